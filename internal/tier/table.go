package tier

import "ConferenceMonitor/internal/domain"

// Default returns the compiled-in ranking table covering the major
// venues. Deployments with their own rankings point tiers.file at a yaml
// table instead.
func Default() *Classifier {
	c, err := New(defaultTable)
	if err != nil {
		// The default table is static; a bad pattern is a programming error.
		panic(err)
	}
	return c
}

var defaultTable = []Entry{
	{
		Name: "NeurIPS", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)neural information processing systems`,
			`(?i)\bneurips\b`,
			`(?i)\bnips\b`,
		},
	},
	{
		// Listed before ICML: its long form contains ICML's long form.
		Name: "ICMLA", Tier: domain.TierC,
		Patterns: []string{
			`(?i)international conference on machine learning and applications`,
			`(?i)\bicmla\b`,
		},
	},
	{
		Name: "ICML", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)international conference on machine learning`,
			`(?i)\bicml\b`,
		},
	},
	{
		Name: "ICLR", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)international conference on learning representations`,
			`(?i)\biclr\b`,
		},
	},
	{
		Name: "CVPR", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)conference on computer vision and pattern recognition`,
			`(?i)\bcvpr\b`,
		},
	},
	{
		Name: "ICCV", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)international conference on computer vision\b`,
			`(?i)\biccv\b`,
		},
	},
	{
		// Listed before ACL: its long form contains ACL's long form.
		Name: "NAACL", Tier: domain.TierA,
		Patterns: []string{
			`(?i)north american chapter of the association for computational linguistics`,
			`(?i)\bnaacl\b`,
		},
	},
	{
		Name: "ACL", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)association for computational linguistics`,
			`(?i)annual meeting of the acl\b`,
			`(?i)^acl(\s+\d{4})?$`,
		},
	},
	{
		Name: "AAAI", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)aaai conference on artificial intelligence`,
			`(?i)\baaai\b`,
		},
	},
	{
		Name: "KDD", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)knowledge discovery and data mining`,
			`(?i)acm sigkdd`,
			`(?i)\bkdd\b`,
		},
	},
	{
		Name: "SIGMOD", Tier: domain.TierAStar,
		Patterns: []string{
			`(?i)international conference on management of data`,
			`(?i)\bsigmod\b`,
		},
	},
	{
		Name: "EMNLP", Tier: domain.TierA,
		Patterns: []string{
			`(?i)empirical methods in natural language processing`,
			`(?i)\bemnlp\b`,
		},
	},
	{
		Name: "ECCV", Tier: domain.TierA,
		Patterns: []string{
			`(?i)european conference on computer vision`,
			`(?i)\beccv\b`,
		},
	},
	{
		Name: "IJCAI", Tier: domain.TierA,
		Patterns: []string{
			`(?i)international joint conferences? on artificial intelligence`,
			`(?i)\bijcai\b`,
		},
	},
	{
		Name: "COLING", Tier: domain.TierB,
		Patterns: []string{
			`(?i)international conference on computational linguistics`,
			`(?i)\bcoling\b`,
		},
	},
	{
		Name: "ICANN", Tier: domain.TierB,
		Patterns: []string{
			`(?i)international conference on artificial neural networks`,
			`(?i)\bicann\b`,
		},
	},
}
