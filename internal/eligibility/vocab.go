package eligibility

// Vocabulary holds the term lists the engine matches against lowercase text.
type Vocabulary struct {
	Include             []string
	Exclude             []string
	Core                []string
	InternshipPlatforms []string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Include: []string{
			"artificial intelligence", "machine learning", "deep learning",
			"neural network", "nlp", "natural language processing",
			"computer vision", "data science", "generative ai", "gen ai",
			"llm", "large language model", "reinforcement learning",
			"mlops", "ai research", "ai engineer", "ml engineer",
			"transformer", "diffusion model", "multimodal", "robotics ai",
			"speech recognition", "recommendation system", "ai intern",
		},
		Exclude: []string{
			"senior", "5+ years", "lead", "manager", "director", "10 years",
			"full time", "full-time", "job posting", "job opening", "expert",
			"phd", "ph.d", "mtech", "m.tech", "master's", "masters degree",
			// listings that require a language other than English or Hindi
			"japanese", "german", "french", "mandarin", "spanish", "korean",
		},
		Core: []string{
			"research", "deep learning", "computer vision", "generative ai", "nlp", "scientist",
		},
		InternshipPlatforms: []string{"internshala", "unstop"},
	}
}

const (
	DefaultMinStipendINR = 5000
	DefaultHighStipend   = 40000

	baseScore  = 50
	coreBonus  = 20
	orgBonus   = 15
	payBonus   = 15
	maxScore   = 100
	pastYears  = 9
	internWord = "intern"
)

// start window phrases that never reject a listing
var flexibleStarts = map[string]bool{
	"":              true,
	"not mentioned": true,
	"rolling":       true,
	"immediately":   true,
	"asap":          true,
	"flexible":      true,
	"ongoing":       true,
	"open":          true,
	"continuous":    true,
	"anytime":       true,
}
