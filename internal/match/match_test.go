package match

import (
	"slices"
	"testing"

	"github.com/kootkounter/kootbot/internal/domain"
)

func TestDetect(t *testing.T) {
	m := New(domain.Vocabulary())

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "kitchen sink",
			in:   "owo are you a koot boi nerd ishh?!?!? oh nuu UWU!",
			want: []string{"owo", "koot", "boi", "nerd", "ishh", "nuu", "uwu"},
		},
		{
			name: "clean message",
			in:   "I'm a normal person",
			want: []string{},
		},
		{
			name: "digit fold",
			in:   "0wo",
			want: []string{"owo"},
		},
		{
			name: "punctuation stripped inside tokens",
			in:   "K-O-O-T... KOOT!!!",
			want: []string{"koot", "koot"},
		},
		{
			name: "substring does not count",
			in:   "scooter bois nerdy",
			want: []string{},
		},
		{
			name: "duplicates preserved in order",
			in:   "uwu owo uwu",
			want: []string{"uwu", "owo", "uwu"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Detect(tc.in)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("Detect(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDetect_OutputIsAlwaysVocabulary(t *testing.T) {
	m := New(domain.Vocabulary())
	vocab := map[string]bool{}
	for _, term := range domain.Vocabulary() {
		vocab[term] = true
	}

	inputs := []string{
		"owo 0w0 k00t nuuuu nerd herd",
		"total gibberish ∆∆∆ ☃ b0i",
		"ISHH ishh iSHh",
	}
	for _, in := range inputs {
		for _, term := range m.Detect(in) {
			if !vocab[term] {
				t.Fatalf("Detect(%q) produced non-vocabulary term %q", in, term)
			}
		}
	}
}

func TestDetect_PureAndDeterministic(t *testing.T) {
	m := New(domain.Vocabulary())
	const in = "owo koot OWO k0ot"
	first := m.Detect(in)
	for i := 0; i < 10; i++ {
		if got := m.Detect(in); !slices.Equal(got, first) {
			t.Fatalf("Detect is not deterministic: %v vs %v", got, first)
		}
	}
}
