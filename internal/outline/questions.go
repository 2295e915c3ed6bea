package outline

import "strings"

// PathSeparator joins ancestor titles into a question.
const PathSeparator = " > "

// Question is one leaf of the outline with the titles leading to it.
type Question struct {
	Text string   `json:"question"`
	Path []string `json:"path"`
}

// Questions walks terms depth-first and returns one question per leaf.
// A node with no children is a leaf; sub-detail strings are always leaves.
func Questions(terms []Term) []Question {
	var out []Question
	emit := func(path ...string) {
		p := make([]string, len(path))
		copy(p, path)
		out = append(out, Question{Text: strings.Join(p, PathSeparator), Path: p})
	}

	for _, t := range terms {
		if len(t.SubItems) == 0 {
			emit(t.Title)
			continue
		}
		for _, si := range t.SubItems {
			if len(si.Details) == 0 {
				emit(t.Title, si.Title)
				continue
			}
			for _, d := range si.Details {
				if len(d.SubDetails) == 0 {
					emit(t.Title, si.Title, d.Title)
					continue
				}
				for _, sd := range d.SubDetails {
					emit(t.Title, si.Title, d.Title, sd)
				}
			}
		}
	}
	return out
}
