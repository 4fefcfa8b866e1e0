package normalize

// DefaultTaxonomy is the fixed skill list matched against job descriptions.
// Order matters: extracted skills are reported in this order.
var DefaultTaxonomy = []string{
	// languages
	"Python", "Go", "Golang", "Java", "JavaScript", "TypeScript", "C++", "C#",
	"Rust", "Ruby", "PHP", "Kotlin", "Swift", "Scala", "SQL", "Bash",
	// web
	"React", "Angular", "Vue", "Next.js", "Node.js", "Django", "Flask", "FastAPI",
	"Spring Boot", "Rails", "GraphQL", "REST API", "gRPC", "HTML", "CSS",
	// data
	"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis", "Elasticsearch", "Kafka",
	"RabbitMQ", "Spark", "Airflow", "dbt", "Snowflake", "BigQuery", "Pandas",
	"NumPy", "Tableau",
	// ml
	"Machine Learning", "Deep Learning", "PyTorch", "TensorFlow", "scikit-learn",
	"NLP", "LLM", "Computer Vision",
	// infra
	"Docker", "Kubernetes", "Terraform", "Ansible", "AWS", "GCP", "Azure",
	"Linux", "CI/CD", "Jenkins", "GitHub Actions", "Prometheus", "Grafana",
	// practice
	"Git", "Agile", "Microservices", "Distributed Systems", "Testing",
}
