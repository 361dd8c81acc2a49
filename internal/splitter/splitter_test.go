package splitter

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		s := New(WithChunkSize(500))
		if s.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		s := New(WithOverlap(100))
		if s.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", s.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", s.overlap)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestSplit_SmallText(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	text := "This fits in one chunk."

	chunks := s.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected chunk to equal input, got %q", chunks[0])
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s := New(WithChunkSize(30), WithOverlap(0))
	text := "first paragraph here\n\nsecond paragraph here\n\nthird one"

	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// With overlap 0, chunks must concatenate back to the input exactly.
	if strings.Join(chunks, "") != text {
		t.Errorf("chunks do not concatenate to input: %q", chunks)
	}
	// Boundaries should fall after paragraph breaks, not mid-word.
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Errorf("expected first chunk to end at a paragraph break, got %q", chunks[0])
	}
}

func TestSplit_JapaneseSentenceBoundaries(t *testing.T) {
	s := New(WithChunkSize(20), WithOverlap(0))
	text := "ブログの書き方を説明します。タイトルが重要です。キーワードを意識しましょう。"

	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Errorf("chunks do not concatenate to input")
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk, "。") {
			t.Errorf("chunk %d should end at a sentence boundary, got %q", i, chunk)
		}
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("word ", 100)

	chunks := s.Split(text)

	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 50 {
			t.Errorf("chunk %d exceeds size limit: %d runes", i, n)
		}
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(0))
	text := strings.Repeat("x", 25)

	chunks := s.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Errorf("chunks do not concatenate to input")
	}
}

func TestSplit_OverlapSeedsNextChunk(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(3))
	text := "0123456789ABCDEFGHIJ"

	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := overlapTail(chunks[i-1], 3)
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d should start with tail of chunk %d", i, i-1)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New()
	text := "WordPressの設定について説明します。\n\nまずダッシュボードを開きます。次にプラグインを選択します。\n\n" +
		strings.Repeat("詳細な手順は以下の通りです。", 200)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
