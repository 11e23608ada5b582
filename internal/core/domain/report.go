package domain

type Framework string

const (
	FrameworkGDPR  Framework = "GDPR"
	FrameworkHIPAA Framework = "HIPAA"
)

var gdprRules = [...]string{
	"consent",
	"data retention",
	"right to access",
	"right to delete",
	"privacy policy",
}

var hipaaRules = [...]string{
	"PHI",
	"protected health information",
	"breach notification",
	"encryption",
	"access control",
}

// RuleGroup is one framework's keyword checklist.
type RuleGroup struct {
	Framework Framework `json:"framework"`
	Rules     []string  `json:"rules"`
}

// RuleGroups returns a fresh copy of the built-in checklists in evaluation order.
func RuleGroups() []RuleGroup {
	return []RuleGroup{
		{Framework: FrameworkGDPR, Rules: append([]string(nil), gdprRules[:]...)},
		{Framework: FrameworkHIPAA, Rules: append([]string(nil), hipaaRules[:]...)},
	}
}

// DefaultRuleSet flattens RuleGroups into the single list the scorer evaluates.
func DefaultRuleSet() []string {
	rules := make([]string, 0, len(gdprRules)+len(hipaaRules))
	for _, group := range RuleGroups() {
		rules = append(rules, group.Rules...)
	}
	return rules
}

// ComplianceReport partitions a rule set into matched and unmatched rules.
// Both slices keep the rule set's order and together contain every rule once.
type ComplianceReport struct {
	Score          float64  `json:"score"`
	MatchedRules   []string `json:"matchedRules"`
	UnmatchedRules []string `json:"unmatchedRules"`
}

// CheckResult is what the request boundary renders for one upload.
type CheckResult struct {
	Filename string         `json:"filename"`
	Format   DocumentFormat `json:"format"`
	ComplianceReport
	StorageURL string `json:"storageUrl,omitempty"`
}
