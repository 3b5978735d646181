package chunker

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSentences(t *testing.T) {
	text := "A ZOT 8.2 admite 52 m. Ver o Anexo 1.1!\n\nNovo parágrafo sem ponto\nque continua"
	got := sentences(text)
	want := []string{
		"A ZOT 8.2 admite 52 m.",
		"Ver o Anexo 1.1!",
		"Novo parágrafo sem ponto que continua",
	}
	if !slices.Equal(got, want) {
		t.Errorf("sentences() = %q, want %q", got, want)
	}
}

func TestSplit_Empty(t *testing.T) {
	s := New(100, 1)
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if got := s.Split(text); got != nil {
			t.Errorf("Split(%q) = %q, want nil", text, got)
		}
	}
}

func TestSplit_SingleFragment(t *testing.T) {
	got := New(200, 1).Split("A taxa de ocupação é 75%. O recuo frontal é 4 m.")
	if len(got) != 1 || got[0] != "A taxa de ocupação é 75%. O recuo frontal é 4 m." {
		t.Errorf("unexpected fragments: %q", got)
	}
}

func TestSplit_PacksAndOverlaps(t *testing.T) {
	text := "Primeira frase aqui. Segunda frase aqui. Terceira frase aqui. Quarta frase aqui."
	// Sentences are 18 to 20 runes; two fit in 41.
	got := New(41, 1).Split(text)
	want := []string{
		"Primeira frase aqui. Segunda frase aqui.",
		"Segunda frase aqui. Terceira frase aqui.",
		"Terceira frase aqui. Quarta frase aqui.",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}

	got = New(41, 0).Split(text)
	want = []string{
		"Primeira frase aqui. Segunda frase aqui.",
		"Terceira frase aqui. Quarta frase aqui.",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Split() without overlap = %q, want %q", got, want)
	}
}

func TestSplit_OverlapLargerThanBudget(t *testing.T) {
	text := "Uma frase bem longa. Outra frase longa. Mais uma frase."
	got := New(22, 3).Split(text)
	if len(got) != 3 {
		t.Fatalf("expected one fragment per sentence, got %q", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Errorf("duplicate fragment %q", got[i])
		}
	}
}

func TestSplit_DropsOverlapThatLeavesNoRoom(t *testing.T) {
	text := "Primeira frase aqui. Terceira frase aqui. Uma frase bem mais longa que as outras."
	got := New(41, 1).Split(text)
	want := []string{
		"Primeira frase aqui. Terceira frase aqui.",
		"Uma frase bem mais longa que as outras.",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}
}

func TestSplit_HardSplitsLongSentence(t *testing.T) {
	long := strings.Repeat("palavra ", 60) // 480 runes, no terminal punctuation
	got := New(100, 0).Split(long)
	if len(got) < 5 {
		t.Fatalf("expected the sentence to be cut, got %d fragments", len(got))
	}
	for _, f := range got {
		if n := utf8.RuneCountInString(f); n > 100 {
			t.Errorf("fragment of %d runes exceeds budget", n)
		}
		if strings.HasPrefix(f, " ") || strings.HasSuffix(f, " ") {
			t.Errorf("fragment %q not trimmed", f)
		}
	}
	if joined := strings.Join(got, " "); joined != strings.TrimSpace(long) {
		t.Error("hard split lost text")
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(0, -2)
	if s.maxRunes != DefaultMaxRunes || s.overlap != 0 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}
