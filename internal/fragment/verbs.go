package fragment

// strongVerbs are resume action verbs that earn the leading-verb impact bonus.
var strongVerbs = map[string]struct{}{
	"accelerated": {}, "achieved": {}, "architected": {}, "automated": {},
	"built": {}, "championed": {}, "created": {}, "cut": {},
	"delivered": {}, "designed": {}, "developed": {}, "drove": {},
	"eliminated": {}, "engineered": {}, "established": {}, "expanded": {},
	"generated": {}, "grew": {}, "implemented": {}, "improved": {},
	"increased": {}, "launched": {}, "led": {}, "migrated": {},
	"optimized": {}, "orchestrated": {}, "owned": {}, "pioneered": {},
	"reduced": {}, "redesigned": {}, "refactored": {}, "scaled": {},
	"shipped": {}, "spearheaded": {}, "streamlined": {}, "transformed": {},
}
