package injection

import "regexp"

type Category string

const (
	CategoryInstructionBypass Category = "instruction_bypass"
	CategoryRoleOverride      Category = "role_override"
	CategoryEncodingTrick     Category = "encoding_trick"
	CategoryOutputSteering    Category = "output_steering"
)

// Rule is one injection pattern. Rules run against the location and query
// fields, which are pasted into prompts verbatim.
type Rule struct {
	Name     string
	Category Category
	Severity float64 // 0.0 to 1.0
	Regex    *regexp.Regexp
}

func DefaultRules() []Rule {
	return []Rule{
		{"ignore_previous", CategoryInstructionBypass, 0.95,
			regexp.MustCompile(`(?i)ignore\s+(all\s+)?(the\s+)?(previous|above|prior)\s+instructions`)},
		{"disregard_prior", CategoryInstructionBypass, 0.95,
			regexp.MustCompile(`(?i)disregard\s+(all\s+)?(the\s+)?(prior|previous|above)\s+(instructions|context|rules)`)},
		// Hindi: "ignore (all) previous instructions".
		{"ignore_previous_hi", CategoryInstructionBypass, 0.95,
			regexp.MustCompile(`(पिछले|पहले\s+के|ऊपर\s+के)\s+(सभी\s+)?निर्देश(ों)?\s+(को\s+)?(अनदेखा|नज़रअंदाज़|नजरअंदाज|भूल)`)},
		// Marathi: "ignore (all) previous instructions".
		{"ignore_previous_mr", CategoryInstructionBypass, 0.95,
			regexp.MustCompile(`(मागील|आधीच्या|वरील)\s+(सर्व\s+)?(सूचना|निर्देश)\s+(दुर्लक्षित|विसर)`)},
		{"language_override", CategoryInstructionBypass, 0.9,
			regexp.MustCompile(`(?i)(ignore|forget)\s+the\s+language\s+(setting|instruction)`)},
		{"new_instructions", CategoryInstructionBypass, 0.8,
			regexp.MustCompile(`(?i)(new|updated|revised)\s+instructions?\s*:`)},

		{"jailbreak", CategoryRoleOverride, 0.9,
			regexp.MustCompile(`\bDAN\b|(?i:do\s+anything\s+now|jailbreak|unrestricted\s+mode)`)},
		{"code_block_system", CategoryRoleOverride, 0.9,
			regexp.MustCompile("(?i)```system")},
		{"prompt_tag", CategoryRoleOverride, 0.9,
			regexp.MustCompile(`(?i)</?\s*(system|instructions?|prompt)\s*>`)},
		{"system_prefix", CategoryRoleOverride, 0.85,
			regexp.MustCompile(`(?i)^\s*system\s*:\s*`)},
		{"developer_mode", CategoryRoleOverride, 0.85,
			regexp.MustCompile(`(?i)(developer|debug|admin|root)\s+mode\s+(enabled|activated|on)`)},
		{"you_are_now", CategoryRoleOverride, 0.7,
			regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\s+`)},

		{"base64_instruction", CategoryEncodingTrick, 0.85,
			regexp.MustCompile(`(?i)(decode|execute|follow)\s+(the\s+)?base64`)},

		{"output_format_override", CategoryOutputSteering, 0.8,
			regexp.MustCompile(`(?i)(instead|rather)\s+(of\s+json\s+)?(return|respond|reply|output)\s+(with\s+)?(only\s+)?(plain\s+text|html|code|a\s+poem)`)},
		{"response_prefix", CategoryOutputSteering, 0.75,
			regexp.MustCompile(`(?i)respond\s+with\s*:\s*(sure|absolutely|of course)`)},
	}
}
