package services

import (
	"fmt"
	"strings"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/links"
)

// LinkKind classifies a reference link in the assembled context.
type LinkKind string

// Link kinds, in manifest display order.
const (
	// LinkKindPrimary is the course-platform page of the lesson.
	LinkKindPrimary LinkKind = "primary-resource"

	// LinkKindVideo is a lesson video.
	LinkKindVideo LinkKind = "video"

	// LinkKindSupplementary is a URL mentioned inside the lesson text.
	LinkKindSupplementary LinkKind = "supplementary"
)

// ReferenceLink is one entry of the assembled link manifest.
type ReferenceLink struct {
	// Title is the lesson title the link belongs to.
	Title string

	// URL is the link target.
	URL string

	// Kind classifies where the link came from.
	Kind LinkKind
}

// AssembledContext is retrieval output shaped for prompt construction.
type AssembledContext struct {
	// Text is the retrieved chunk texts joined with blank lines.
	Text string

	// Links is the reference manifest, grouped by title in result order.
	Links []ReferenceLink

	// Titles are the distinct source titles in result order.
	Titles []string
}

// systemPromptTemplate frames the assistant as a course tutor. Answers must
// stay grounded in the supplied material and cite its links.
const systemPromptTemplate = `あなたはオンライン講座の専門アシスタントです。
以下の講座コンテンツを参考にして、受講生の質問に日本語で丁寧に回答してください。

回答のルール:
1. 提供された講座コンテンツの内容に基づいて回答してください
2. コンテンツに記載がない場合は、その旨を正直に伝えてください
3. 関連する参考リンクがあれば回答の最後に紹介してください
4. 専門用語はわかりやすく説明してください

【講座コンテンツ】
%s

【参考リンク】
%s`

// noLinksPlaceholder fills the manifest slot when retrieval found no links.
const noLinksPlaceholder = "（参考リンクはありません）"

// AssembleContext builds the prompt context from search results: chunk texts
// joined with blank lines, plus a link manifest grouped by source title.
// Every result contributes its links to its title's group, so links that
// only appear in a later chunk of an item are still collected. Links are
// deduplicated within a title group; the same URL under two titles stays.
// Empty input yields an empty context, never an error.
func AssembleContext(results []domain.SearchResult) AssembledContext {
	if len(results) == 0 {
		return AssembledContext{}
	}

	type linkKey struct {
		title string
		url   string
	}

	texts := make([]string, 0, len(results))
	var titles []string
	seenTitles := make(map[string]struct{})
	seenLinks := make(map[linkKey]struct{})
	groups := make(map[string][]ReferenceLink)

	addLink := func(title, url string, kind LinkKind) {
		if url == "" {
			return
		}
		key := linkKey{title: title, url: url}
		if _, ok := seenLinks[key]; ok {
			return
		}
		seenLinks[key] = struct{}{}
		groups[title] = append(groups[title], ReferenceLink{Title: title, URL: url, Kind: kind})
	}

	for _, result := range results {
		texts = append(texts, result.Content)

		if _, ok := seenTitles[result.Title]; !ok {
			seenTitles[result.Title] = struct{}{}
			titles = append(titles, result.Title)
		}

		addLink(result.Title, result.ResourceURL, LinkKindPrimary)
		addLink(result.Title, result.VideoURL, LinkKindVideo)
		for _, url := range links.ExtractVideoLinks(result.Content) {
			addLink(result.Title, url, LinkKindVideo)
		}
		for _, url := range links.ExtractResourceLinks(result.Content) {
			addLink(result.Title, url, LinkKindSupplementary)
		}
	}

	var manifest []ReferenceLink
	for _, title := range titles {
		manifest = append(manifest, groups[title]...)
	}

	return AssembledContext{
		Text:   strings.Join(texts, "\n\n"),
		Links:  manifest,
		Titles: titles,
	}
}

// BuildSystemPrompt renders the tutor system prompt around the assembled
// context.
func BuildSystemPrompt(assembled AssembledContext) string {
	manifest := renderManifest(assembled.Links)
	return fmt.Sprintf(systemPromptTemplate, assembled.Text, manifest)
}

// renderManifest formats the link manifest grouped by title, one link per
// line with its kind label.
func renderManifest(refs []ReferenceLink) string {
	if len(refs) == 0 {
		return noLinksPlaceholder
	}

	kindLabels := map[LinkKind]string{
		LinkKindPrimary:       "講座ページ",
		LinkKindVideo:         "動画",
		LinkKindSupplementary: "参考資料",
	}

	var b strings.Builder
	currentTitle := ""
	for _, ref := range refs {
		if ref.Title != currentTitle {
			if currentTitle != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "■ %s\n", ref.Title)
			currentTitle = ref.Title
		}
		fmt.Fprintf(&b, "- [%s] %s\n", kindLabels[ref.Kind], ref.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
