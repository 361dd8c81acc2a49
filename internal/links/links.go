// Package links extracts video and resource URLs from course text.
// Extraction is pure string work and never fails; malformed text simply
// yields fewer links.
package links

import (
	"regexp"
	"strings"
)

// videoPatterns match the YouTube URL shapes that appear in course material.
// Order matters only for readability; matches are deduplicated afterwards.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(?:www\.)?youtube\.com/watch\?v=[\w-]+(?:&[\w=&-]*)?`),
	regexp.MustCompile(`https?://youtu\.be/[\w-]+(?:\?[\w=&-]*)?`),
	regexp.MustCompile(`https?://(?:www\.)?youtube\.com/embed/[\w-]+(?:\?[\w=&-]*)?`),
	regexp.MustCompile(`https?://(?:www\.)?youtube\.com/v/[\w-]+(?:\?[\w=&-]*)?`),
}

// genericURLPattern matches any http(s) URL up to whitespace or a character
// that cannot appear in a URL.
var genericURLPattern = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")

// ExtractVideoLinks returns the YouTube URLs found in text, deduplicated.
func ExtractVideoLinks(text string) []string {
	if text == "" {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})
	for _, pattern := range videoPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			url := cleanURL(match)
			if url == "" {
				continue
			}
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			found = append(found, url)
		}
	}
	return found
}

// ExtractResourceLinks returns the non-video URLs found in text, in order of
// first appearance, deduplicated. A URL reported by ExtractVideoLinks is
// never reported here.
func ExtractResourceLinks(text string) []string {
	if text == "" {
		return nil
	}

	video := make(map[string]struct{})
	for _, url := range ExtractVideoLinks(text) {
		video[url] = struct{}{}
	}

	var found []string
	seen := make(map[string]struct{})
	for _, match := range genericURLPattern.FindAllString(text, -1) {
		url := cleanURL(match)
		if url == "" {
			continue
		}
		if isVideoURL(url, video) {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		found = append(found, url)
	}
	return found
}

// isVideoURL reports whether url, or url after cleaning, is a known video
// link. The generic pattern can match a video URL with extra trailing
// characters the video patterns exclude, so a substring check guards that.
func isVideoURL(url string, video map[string]struct{}) bool {
	if _, ok := video[url]; ok {
		return true
	}
	return strings.Contains(url, "youtube.com/") || strings.Contains(url, "youtu.be/")
}

// cleanURL strips trailing punctuation that sentence context attaches to a
// URL, including unbalanced closing parentheses.
func cleanURL(url string) string {
	url = strings.TrimRight(url, ".,;!?、。")
	for strings.HasSuffix(url, ")") && strings.Count(url, "(") < strings.Count(url, ")") {
		url = strings.TrimSuffix(url, ")")
		url = strings.TrimRight(url, ".,;!?、。")
	}
	return url
}
