package workflow

// QuestionResult pairs a question with everything the workflow produced
// for it.
type QuestionResult struct {
	Question         string   `json:"question"`
	FullAnswer       string   `json:"full_answer"`
	RestrictedAnswer string   `json:"restricted_answer"`
	FullScore        float64  `json:"full_score"`
	RestrictedScore  float64  `json:"restricted_score"`
	MissingConcepts  []string `json:"missing_concepts"`
	Rationale        string   `json:"rationale"`
}

// Report is the workflow's final output. Gap is the mean full-context score
// minus the mean restricted score; a large positive gap means the learned
// subset is far from covering the domain.
type Report struct {
	SeedConceptNames []string         `json:"seed_concept_names"`
	Questions        []QuestionResult `json:"questions"`
	FullMean         float64          `json:"full_mean"`
	RestrictedMean   float64          `json:"restricted_mean"`
	Gap              float64          `json:"gap"`
	MissingConcepts  []string         `json:"missing_concepts"`
}

func buildReport(st State) *Report {
	rep := &Report{
		SeedConceptNames: make([]string, 0, len(st.SeedConcepts)),
		Questions:        make([]QuestionResult, 0, len(st.Questions)),
		MissingConcepts:  []string{},
	}
	for _, c := range st.SeedConcepts {
		rep.SeedConceptNames = append(rep.SeedConceptNames, c.Name)
	}

	gradeByIndex := map[int]QuestionGrade{}
	for _, g := range st.Grades {
		gradeByIndex[g.QuestionIndex] = g
	}

	var fullSum, restrictedSum float64
	seenMissing := map[string]bool{}

	for i, q := range st.Questions {
		g := gradeByIndex[i]
		qr := QuestionResult{
			Question:        q,
			FullScore:       g.FullScore,
			RestrictedScore: g.RestrictedScore,
			MissingConcepts: g.MissingConcepts,
			Rationale:       g.Rationale,
		}
		if qr.MissingConcepts == nil {
			qr.MissingConcepts = []string{}
		}
		if i < len(st.FullAnswers) {
			qr.FullAnswer = st.FullAnswers[i].Text
		}
		if i < len(st.RestrictedAnswers) {
			qr.RestrictedAnswer = st.RestrictedAnswers[i].Text
		}
		rep.Questions = append(rep.Questions, qr)

		fullSum += g.FullScore
		restrictedSum += g.RestrictedScore
		for _, m := range g.MissingConcepts {
			if m == "" || seenMissing[m] {
				continue
			}
			seenMissing[m] = true
			rep.MissingConcepts = append(rep.MissingConcepts, m)
		}
	}

	if n := len(st.Questions); n > 0 {
		rep.FullMean = fullSum / float64(n)
		rep.RestrictedMean = restrictedSum / float64(n)
	}
	rep.Gap = rep.FullMean - rep.RestrictedMean
	return rep
}
