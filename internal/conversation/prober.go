package conversation

// recentProbeTurns is how many recent user answers are mined for keywords
const recentProbeTurns = 2

// Prober phrases the question asked when the user wants to keep talking about a topic
type Prober struct {
	keywords KeywordSource
}

// NewProber creates a prober over a keyword source
func NewProber(keywords KeywordSource) *Prober {
	return &Prober{keywords: keywords}
}

// Probe mines the latest user answers of the active topic for keyword hits
func (p *Prober) Probe(s *Session) string {
	table := p.keywords.Table()
	topic := s.Context.CurrentTopic
	if active, ok := s.ActiveTopic(); ok {
		topic = active
	}
	return table.Probe(topic, s.RecentUserTexts(topic, recentProbeTurns))
}
