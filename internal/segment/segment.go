// Package segment splits legal document text into chapters, articles and
// overlapping chunks tagged with structural provenance.
package segment

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/lawgest/internal/chunker"
)

// Placeholder titles used when a document has no chapter or article headings.
const (
	NoChapterTitle = "Không có chương"
	NoArticleTitle = "Không có điều"
)

var (
	chapterHeading = regexp.MustCompile(`Chương\s+[IVXLCDM]+\.\s+.+`)
	articleHeading = regexp.MustCompile(`Điều\s+\d+\.\s+.+`)
	articleNumber  = regexp.MustCompile(`Điều\s+(\d+)`)
)

// Chunk is a bounded slice of one article's text with its provenance.
type Chunk struct {
	Text          string `json:"text"`
	Program       string `json:"program"`
	ChapterTitle  string `json:"chapter_title"`
	ArticleTitle  string `json:"article_title"`
	ArticleNumber *int   `json:"article_number,omitempty"`
}

// Metadata returns the provenance fields keyed by the names the index
// expects. article_number is present only when the heading carried one.
func (c Chunk) Metadata() map[string]any {
	m := map[string]any{
		"program":       c.Program,
		"chapter_title": c.ChapterTitle,
		"article_title": c.ArticleTitle,
	}
	if c.ArticleNumber != nil {
		m["article_number"] = *c.ArticleNumber
	}
	return m
}

// Chapter is a top-level division of the document.
type Chapter struct {
	Title string
	Body  string
}

// Article is one "Điều" within a chapter. Body includes the heading line.
type Article struct {
	Title  string
	Body   string
	Number *int
}

// Segment splits text into chunks. documentName is stamped on every chunk
// as its program. Empty text yields no chunks.
func Segment(text, documentName string, cfg chunker.Config) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	for _, ch := range SplitChapters(text) {
		for _, art := range SplitArticles(ch.Body) {
			for _, part := range chunker.Split(art.Body, cfg) {
				chunks = append(chunks, Chunk{
					Text:          part,
					Program:       documentName,
					ChapterTitle:  ch.Title,
					ArticleTitle:  art.Title,
					ArticleNumber: copyNumber(art.Number),
				})
			}
		}
	}
	return chunks
}

// SplitChapters splits text on chapter headings. Text before the first
// heading belongs to no chapter. Without any heading the whole text is
// returned as a single placeholder chapter.
func SplitChapters(text string) []Chapter {
	locs := chapterHeading.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Chapter{{Title: NoChapterTitle, Body: strings.TrimSpace(text)}}
	}

	chapters := make([]Chapter, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chapters = append(chapters, Chapter{
			Title: strings.TrimSpace(text[loc[0]:loc[1]]),
			Body:  strings.TrimSpace(text[loc[1]:end]),
		})
	}
	return chapters
}

// SplitArticles splits a chapter body on article headings. Text before the
// first heading is dropped. A body with no heading at all becomes one
// placeholder article.
func SplitArticles(body string) []Article {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	locs := articleHeading.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return []Article{{Title: NoArticleTitle, Body: strings.TrimSpace(body)}}
	}

	articles := make([]Article, 0, len(locs))
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		title := strings.TrimSpace(body[loc[0]:loc[1]])
		content := strings.TrimSpace(body[loc[1]:end])
		articles = append(articles, Article{
			Title:  title,
			Body:   title + "\n" + content,
			Number: parseArticleNumber(title),
		})
	}
	return articles
}

func parseArticleNumber(title string) *int {
	m := articleNumber.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func copyNumber(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
