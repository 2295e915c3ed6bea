package segment

import (
	"strings"
	"testing"

	"github.com/dgallion1/lawgest/internal/chunker"
)

const sampleLaw = `LUẬT GIAO DỊCH ĐIỆN TỬ
Lời nói đầu không thuộc chương nào.
Chương I. QUY ĐỊNH CHUNG
Phần dẫn nhập của chương bị bỏ qua.
Điều 1. Phạm vi điều chỉnh
Luật này quy định về giao dịch điện tử.
Điều 2. Đối tượng áp dụng
Luật này áp dụng đối với cơ quan, tổ chức, cá nhân.
Chương II. CHỮ KÝ ĐIỆN TỬ
Điều 3. Giá trị pháp lý của chữ ký điện tử
Chữ ký điện tử có giá trị pháp lý.`

func TestSegment_ChaptersAndArticles(t *testing.T) {
	chunks := Segment(sampleLaw, "luat-gddt.docx", chunker.DefaultConfig())

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	want := []struct {
		chapter string
		article string
		number  int
	}{
		{"Chương I. QUY ĐỊNH CHUNG", "Điều 1. Phạm vi điều chỉnh", 1},
		{"Chương I. QUY ĐỊNH CHUNG", "Điều 2. Đối tượng áp dụng", 2},
		{"Chương II. CHỮ KÝ ĐIỆN TỬ", "Điều 3. Giá trị pháp lý của chữ ký điện tử", 3},
	}
	for i, w := range want {
		c := chunks[i]
		if c.ChapterTitle != w.chapter {
			t.Errorf("chunk %d: expected chapter %q, got %q", i, w.chapter, c.ChapterTitle)
		}
		if c.ArticleTitle != w.article {
			t.Errorf("chunk %d: expected article %q, got %q", i, w.article, c.ArticleTitle)
		}
		if c.ArticleNumber == nil || *c.ArticleNumber != w.number {
			t.Errorf("chunk %d: expected article number %d, got %v", i, w.number, c.ArticleNumber)
		}
		if c.Program != "luat-gddt.docx" {
			t.Errorf("chunk %d: expected program %q, got %q", i, "luat-gddt.docx", c.Program)
		}
		if !strings.HasPrefix(c.Text, w.article) {
			t.Errorf("chunk %d: expected text to start with the heading, got %q", i, c.Text)
		}
	}
}

func TestSegment_DropsTextBeforeFirstHeadings(t *testing.T) {
	chunks := Segment(sampleLaw, "doc", chunker.DefaultConfig())
	for _, c := range chunks {
		if strings.Contains(c.Text, "Lời nói đầu") || strings.Contains(c.Text, "dẫn nhập") {
			t.Errorf("expected preamble text to be dropped, found in %q", c.Text)
		}
	}
}

func TestSegment_NoMarkers(t *testing.T) {
	text := "Quy chế nội bộ về quản lý tài sản.\nCác phòng ban thực hiện nghiêm túc."
	chunks := Segment(text, "quy-che", chunker.DefaultConfig())

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ChapterTitle != NoChapterTitle {
		t.Errorf("expected chapter %q, got %q", NoChapterTitle, c.ChapterTitle)
	}
	if c.ArticleTitle != NoArticleTitle {
		t.Errorf("expected article %q, got %q", NoArticleTitle, c.ArticleTitle)
	}
	if c.ArticleNumber != nil {
		t.Errorf("expected no article number, got %d", *c.ArticleNumber)
	}
	if c.Text != text {
		t.Errorf("expected text %q, got %q", text, c.Text)
	}
}

func TestSegment_ArticlesWithoutChapter(t *testing.T) {
	text := "Điều 5. Quyền của người lao động\nNgười lao động có quyền nghỉ phép.\nĐiều 6. Nghĩa vụ\nTuân thủ nội quy."
	chunks := Segment(text, "noi-quy", chunker.DefaultConfig())

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.ChapterTitle != NoChapterTitle {
			t.Errorf("expected chapter %q, got %q", NoChapterTitle, c.ChapterTitle)
		}
	}
	if *chunks[1].ArticleNumber != 6 {
		t.Errorf("expected article number 6, got %d", *chunks[1].ArticleNumber)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "  \n\t "} {
		if chunks := Segment(in, "x", chunker.DefaultConfig()); len(chunks) != 0 {
			t.Errorf("input %q: expected 0 chunks, got %d", in, len(chunks))
		}
	}
}

func TestSegment_LongArticleSplitsWithinArticle(t *testing.T) {
	body := strings.Repeat("Cơ quan nhà nước có trách nhiệm bảo đảm an toàn thông tin. ", 40)
	text := "Chương I. CHUNG\nĐiều 1. An toàn\n" + body + "\nĐiều 2. Ngắn\nNội dung ngắn."
	cfg := chunker.Config{Size: 300, Overlap: 80}
	chunks := Segment(text, "doc", cfg)

	var first, second int
	for _, c := range chunks {
		switch c.ArticleTitle {
		case "Điều 1. An toàn":
			first++
			if strings.Contains(c.Text, "Nội dung ngắn") {
				t.Errorf("chunk of article 1 leaked article 2 text: %q", c.Text)
			}
		case "Điều 2. Ngắn":
			second++
		}
	}
	if first < 2 {
		t.Errorf("expected article 1 to span several chunks, got %d", first)
	}
	if second != 1 {
		t.Errorf("expected exactly 1 chunk for article 2, got %d", second)
	}
}

func TestSegment_WindowLargerThanArticles(t *testing.T) {
	chunks := Segment(sampleLaw, "doc", chunker.Config{Size: 10000, Overlap: 10})
	articles := 0
	for _, ch := range SplitChapters(sampleLaw) {
		articles += len(SplitArticles(ch.Body))
	}
	if len(chunks) != articles {
		t.Errorf("expected one chunk per article (%d), got %d", articles, len(chunks))
	}
}

func TestSplitChapters_NoHeading(t *testing.T) {
	chapters := SplitChapters("  nội dung  ")
	if len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chapters))
	}
	if chapters[0].Title != NoChapterTitle || chapters[0].Body != "nội dung" {
		t.Errorf("unexpected placeholder chapter %+v", chapters[0])
	}
}

func TestSplitArticles_BodyIncludesHeading(t *testing.T) {
	articles := SplitArticles("mở đầu\nĐiều 12. Hiệu lực\nLuật có hiệu lực từ ngày ký.")
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	a := articles[0]
	if a.Title != "Điều 12. Hiệu lực" {
		t.Errorf("expected title %q, got %q", "Điều 12. Hiệu lực", a.Title)
	}
	if a.Body != "Điều 12. Hiệu lực\nLuật có hiệu lực từ ngày ký." {
		t.Errorf("unexpected body %q", a.Body)
	}
	if a.Number == nil || *a.Number != 12 {
		t.Errorf("expected number 12, got %v", a.Number)
	}
}

func TestChunk_Metadata(t *testing.T) {
	n := 4
	with := Chunk{Program: "p", ChapterTitle: "c", ArticleTitle: "a", ArticleNumber: &n}.Metadata()
	if len(with) != 4 || with["article_number"] != 4 {
		t.Errorf("expected 4 keys with article_number 4, got %v", with)
	}

	without := Chunk{Program: "p", ChapterTitle: "c", ArticleTitle: "a"}.Metadata()
	if _, ok := without["article_number"]; ok {
		t.Errorf("expected article_number to be absent, got %v", without)
	}
	for _, k := range []string{"program", "chapter_title", "article_title"} {
		if _, ok := without[k]; !ok {
			t.Errorf("expected key %q in metadata", k)
		}
	}
}
