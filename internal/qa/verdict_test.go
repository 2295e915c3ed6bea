package qa

import (
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		answer string
		want   Verdict
	}{
		{"Đánh giá: Phù hợp.\nLý do: quy định rõ ràng.", VerdictSuitable},
		{"Mức độ phù hợp: Không phù hợp\nGợi ý sửa đổi: bổ sung thời hạn.", VerdictUnsuitable},
		{"1. Đánh giá mức độ phù hợp:\nCần xem xét thêm vì thiếu căn cứ.", VerdictNeedsReview},
		{"**Đánh giá:** không phù hợp. Nội dung phù hợp một phần.", VerdictUnsuitable},
		{"Phù hợp. Tuy nhiên điều khoản khác không phù hợp.", VerdictUnsuitable},
		{"Không tìm thấy tài liệu liên quan.", VerdictNoContext},
		{"Tôi không chắc.", VerdictUnknown},
		{"", VerdictUnknown},
	}
	for _, tt := range tests {
		if got := ParseVerdict(tt.answer); got != tt.want {
			t.Errorf("ParseVerdict(%q): expected %q, got %q", tt.answer, tt.want, got)
		}
	}
}

func TestParseVerdict_Decomposed(t *testing.T) {
	answer := norm.NFD.String("Đánh giá: Cần xem xét thêm")
	if got := ParseVerdict(answer); got != VerdictNeedsReview {
		t.Errorf("expected %q for decomposed input, got %q", VerdictNeedsReview, got)
	}
}
