package ucrl

// Session holds the mutable run state of a Controller: time, episode
// counters, the cumulative reward and regret, and the histories
// recorded for later inspection. Histories are observation only and
// never influence control decisions.
type Session struct {
	// T is the number of time steps executed so far
	T       int
	Episode int

	Reward float64
	Regret float64

	// ReferenceGain is the gain regret is measured against
	ReferenceGain float64

	// Span, Gain and Iterations describe the last EVI call
	Span       float64
	Gain       float64
	Iterations int

	// EpisodeStarts[k] is the time step episode k + 1 started at
	EpisodeStarts []int

	RegretTimes  []int
	RegretValues []float64

	SpanTimes  []int
	SpanValues []float64

	// PolicyGains[k] is the true gain of the policy of episode k + 1,
	// recorded only for environments implementing environment.Evaluator
	PolicyGains []float64
}

// NewSession returns a Session measuring regret against referenceGain
func NewSession(referenceGain float64) *Session {
	return &Session{ReferenceGain: referenceGain}
}

// record adds the reward observed at a new time step, sampling the
// cumulative regret every interval time steps
func (s *Session) record(reward float64, interval int) {
	s.T++
	s.Reward += reward
	s.Regret += s.ReferenceGain - reward

	if s.T%interval == 0 {
		s.RegretTimes = append(s.RegretTimes, s.T)
		s.RegretValues = append(s.RegretValues, s.Regret)
	}
}

// startEpisode records the start of a new episode whose plan has the
// argument span, sampling the span every interval episodes
func (s *Session) startEpisode(span, gain float64, iterations,
	interval int) {
	s.Episode++
	s.EpisodeStarts = append(s.EpisodeStarts, s.T)
	s.Span, s.Gain, s.Iterations = span, gain, iterations

	if (s.Episode-1)%interval == 0 {
		s.SpanTimes = append(s.SpanTimes, s.T)
		s.SpanValues = append(s.SpanValues, span)
	}
}

// Clone returns a deep copy of the Session
func (s *Session) Clone() *Session {
	clone := *s
	clone.EpisodeStarts = append([]int(nil), s.EpisodeStarts...)
	clone.RegretTimes = append([]int(nil), s.RegretTimes...)
	clone.RegretValues = append([]float64(nil), s.RegretValues...)
	clone.SpanTimes = append([]int(nil), s.SpanTimes...)
	clone.SpanValues = append([]float64(nil), s.SpanValues...)
	clone.PolicyGains = append([]float64(nil), s.PolicyGains...)
	return &clone
}
