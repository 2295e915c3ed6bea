package qa

import (
	"strings"

	"github.com/dgallion1/lawgest/internal/index"
)

// NotFoundAnswer is the reply the model is told to give when the retrieved
// passages do not cover the question.
const NotFoundAnswer = "Không tìm thấy tài liệu liên quan"

// SystemPrompt frames the model as a reviewer answering only from the
// supplied passages.
const SystemPrompt = `Bạn là một trợ lý thông minh. Hãy sử dụng thông tin được cung cấp để trả lời câu hỏi.
Nếu không tìm thấy câu trả lời trong thông tin, hãy nói "` + NotFoundAnswer + `".`

const reviewTemplate = `Thông tin:
{context}

Câu hỏi:
Đánh giá điều luật, quyết định, quy định hoặc quy chế được cung cấp dưới đây:
{question}

Yêu cầu
- Đánh giá mức độ phù hợp trên 3 mức: phù hợp, không phù hợp, cần xem xét thêm.
- Lý do đánh giá.
- Nếu không phù hợp gợi ý sửa đổi.

Trả lời:`

// BuildPrompt fills the review template with the retrieved passages, one
// per paragraph, and the question.
func BuildPrompt(question string, hits []index.Hit) string {
	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		if t := strings.TrimSpace(h.Chunk.Text); t != "" {
			texts = append(texts, t)
		}
	}
	r := strings.NewReplacer("{context}", strings.Join(texts, "\n\n"), "{question}", question)
	return r.Replace(reviewTemplate)
}

// Documents returns the distinct program names of hits in retrieval order.
func Documents(hits []index.Hit) []string {
	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		name := h.Chunk.Program
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
