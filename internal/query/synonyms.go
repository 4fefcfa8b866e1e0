package query

// defaultSynonyms maps a normalized role title to alternate titles that
// job boards commonly use for the same position.
var defaultSynonyms = map[string][]string{
	"software engineer":          {"Software Developer", "SWE"},
	"backend engineer":           {"Backend Developer", "Server Engineer"},
	"frontend engineer":          {"Frontend Developer", "UI Engineer"},
	"full stack engineer":        {"Full Stack Developer", "Fullstack Engineer"},
	"data engineer":              {"Data Platform Engineer", "ETL Developer"},
	"data scientist":             {"Machine Learning Scientist", "Applied Scientist"},
	"data analyst":               {"Business Intelligence Analyst", "Analytics Analyst"},
	"machine learning engineer":  {"ML Engineer", "AI Engineer"},
	"devops engineer":            {"Site Reliability Engineer", "Platform Engineer"},
	"site reliability engineer":  {"SRE", "DevOps Engineer"},
	"mobile engineer":            {"iOS Developer", "Android Developer"},
	"security engineer":          {"Application Security Engineer", "Cybersecurity Engineer"},
	"qa engineer":                {"Test Engineer", "Software Engineer in Test"},
	"product manager":            {"Product Owner"},
	"product designer":           {"UX Designer", "UI/UX Designer"},
}

var (
	seniorMarkers = []string{"senior", "sr", "sr.", "staff", "principal", "lead", "head", "director", "manager"}
	internMarkers = []string{"intern", "internship", "co-op"}
	juniorMarkers = []string{"junior", "jr", "jr.", "entry", "graduate", "grad", "associate"}

	internModifiers  = []string{"intern"}
	juniorModifiers  = []string{"junior", "entry level"}
	defaultModifiers = []string{"intern", "junior", "entry level"}
)
