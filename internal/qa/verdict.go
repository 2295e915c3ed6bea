package qa

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Verdict is the rating parsed from an answer.
type Verdict string

const (
	VerdictSuitable    Verdict = "phù hợp"
	VerdictUnsuitable  Verdict = "không phù hợp"
	VerdictNeedsReview Verdict = "cần xem xét thêm"
	VerdictNoContext   Verdict = "không tìm thấy"
	VerdictUnknown     Verdict = "không xác định"
)

// The prompt's own header ("mức độ phù hợp") must not read as a rating.
var verdictNoise = strings.NewReplacer("mức độ phù hợp", "", "mức phù hợp", "")

// ParseVerdict finds the rating in a model answer. The first line that
// names a rating decides; "không phù hợp" is tested before "phù hợp" since
// it contains it.
func ParseVerdict(answer string) Verdict {
	lower := strings.ToLower(norm.NFC.String(answer))
	if strings.Contains(lower, strings.ToLower(NotFoundAnswer)) {
		return VerdictNoContext
	}
	for _, line := range strings.Split(lower, "\n") {
		if v := classifyLine(verdictNoise.Replace(line)); v != VerdictUnknown {
			return v
		}
	}
	return VerdictUnknown
}

func classifyLine(line string) Verdict {
	switch {
	case strings.Contains(line, string(VerdictUnsuitable)):
		return VerdictUnsuitable
	case strings.Contains(line, string(VerdictNeedsReview)):
		return VerdictNeedsReview
	case strings.Contains(line, string(VerdictSuitable)):
		return VerdictSuitable
	}
	return VerdictUnknown
}
