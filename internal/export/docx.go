// Package export renders review runs as Word documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lawgest/internal/qa"
	"github.com/fumiama/go-docx"
)

const (
	Title     = "Kết Quả Hỏi Đáp"
	Separator = "__________________________________________________"

	// ContentType is the media type of the generated file.
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// WriteDOCX writes one block per result: the numbered question, the
// answer, the referenced documents when any, and a separator line.
func WriteDOCX(w io.Writer, results []qa.Result) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Justification("center").AddText(Title).Bold().Size("32")

	for i, r := range results {
		q := doc.AddParagraph()
		q.AddText(fmt.Sprintf("Câu hỏi %d: ", i+1)).Bold()
		q.AddText(r.Question)

		// Word ignores newlines inside a run, so each answer line gets its
		// own paragraph.
		lines := strings.Split(answerText(r), "\n")
		a := doc.AddParagraph()
		a.AddText("Trả lời: ").Bold()
		a.AddText(strings.TrimSpace(lines[0]))
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				doc.AddParagraph().AddText(line)
			}
		}

		if r.Verdict != "" && r.Verdict != qa.VerdictUnknown {
			v := doc.AddParagraph()
			v.AddText("Đánh giá: ").Bold()
			v.AddText(string(r.Verdict))
		}

		if len(r.Documents) > 0 {
			doc.AddParagraph().AddText("Tài liệu tham khảo: ").Bold()
			for _, name := range r.Documents {
				doc.AddParagraph().AddText("- " + name)
			}
		}

		doc.AddParagraph().AddText(Separator)
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func answerText(r qa.Result) string {
	if r.Error != "" && strings.TrimSpace(r.Answer) == "" {
		return "Lỗi: " + r.Error
	}
	return r.Answer
}
