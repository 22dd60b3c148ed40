package mask

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		masked string
		vars   []string
	}{
		{
			name:   "brace",
			in:     "Hello {name}!",
			masked: "Hello [[VAR0]]!",
			vars:   []string{"{name}"},
		},
		{
			name:   "percent",
			in:     "Hi %user%",
			masked: "Hi [[VAR0]]",
			vars:   []string{"%user%"},
		},
		{
			name:   "angle",
			in:     "Click <b>here</b>",
			masked: "Click [[VAR0]]here[[VAR1]]",
			vars:   []string{"<b>", "</b>"},
		},
		{
			name:   "mixed left to right",
			in:     "<i>%count%</i> items for {user}",
			masked: "[[VAR0]][[VAR1]][[VAR2]] items for [[VAR3]]",
			vars:   []string{"<i>", "%count%", "</i>", "{user}"},
		},
		{
			name:   "token-shaped text is masked",
			in:     "Type [[VAR0]] to insert {name}",
			masked: "Type [[VAR0]] to insert [[VAR1]]",
			vars:   []string{"[[VAR0]]", "{name}"},
		},
		{
			name:   "mangled token-shaped text is masked",
			in:     "see [[ var3 ]] and {x}",
			masked: "see [[VAR0]] and [[VAR1]]",
			vars:   []string{"[[ var3 ]]", "{x}"},
		},
		{
			name:   "no variables",
			in:     "Plain text",
			masked: "Plain text",
		},
		{
			name:   "unbalanced brace is left alone",
			in:     "open { only",
			masked: "open { only",
		},
		{
			name:   "empty braces do not match",
			in:     "set {} here",
			masked: "set {} here",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			masked, ph := Mask(tc.in)
			assert.Equal(t, tc.masked, masked)
			if len(tc.vars) == 0 {
				assert.Empty(t, ph)
			} else {
				assert.Equal(t, tc.vars, ph.Originals())
			}
			assert.Equal(t, tc.in, ph.Restore(masked), "round trip")
		})
	}
}

func TestMask_NumberingRestartsPerString(t *testing.T) {
	_, first := Mask("{a} {b}")
	masked, second := Mask("{c}")

	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, "[[VAR0]]", masked)
	assert.Equal(t, "[[VAR0]]", second[0].Token)
}

func TestRestore_ToleratesBackendMangling(t *testing.T) {
	_, ph := Mask("Hello {name}, you have %n% messages")

	cases := map[string]string{
		"Merhaba [[VAR0]], [[VAR1]] mesajınız var":     "Merhaba {name}, %n% mesajınız var",
		"Merhaba [[ VAR0 ]], [[var1]] mesajınız var":   "Merhaba {name}, %n% mesajınız var",
		"[[VAR1]] messages for [[VAR0]]":               "%n% messages for {name}",
		"unknown [[VAR7]] stays":                       "unknown [[VAR7]] stays",
	}
	for in, want := range cases {
		assert.Equal(t, want, ph.Restore(in), in)
	}
}

func TestRestore_IgnoresOtherCallsTokens(t *testing.T) {
	_, ph := Mask("only {one}")
	// [[VAR1]] belongs to no variable of this call and must survive.
	assert.Equal(t, "{one} and [[VAR1]]", ph.Restore("[[VAR0]] and [[VAR1]]"))
}

func TestMask_TagPairIsTwoVariables(t *testing.T) {
	masked, ph := Mask("<b>Hi</b>")
	assert.Equal(t, "[[VAR0]]Hi[[VAR1]]", masked)
	assert.Equal(t, []string{"<b>", "</b>"}, ph.Originals())
	assert.False(t, ph.OnlyVariables(masked), "text between tags is translatable")
	assert.Equal(t, "<b>Hallo</b>", ph.Restore("[[VAR0]]Hallo[[VAR1]]"))
}

func TestMissing_WithTokenShapedSource(t *testing.T) {
	_, ph := Mask("Type [[VAR0]] to insert {name}")
	assert.Equal(t, []string{"[[VAR1]]"}, ph.Missing("Tippe [[VAR0]] zum Einfügen"))
	assert.Empty(t, ph.Missing("Tippe [[VAR0]] um [[VAR1]] einzufügen"))
}

func TestMissing(t *testing.T) {
	_, ph := Mask("{a} and {b}")
	assert.Empty(t, ph.Missing("[[VAR0]] und [[VAR1]]"))
	assert.Equal(t, []string{"[[VAR1]]"}, ph.Missing("[[VAR0]] und"))
}

func TestOnlyVariables(t *testing.T) {
	masked, ph := Mask(" {a} %b% ")
	assert.True(t, ph.OnlyVariables(masked))

	masked, ph = Mask("Hi {a}")
	assert.False(t, ph.OnlyVariables(masked))

	masked, ph = Mask("   ")
	assert.False(t, ph.OnlyVariables(masked))
}

func TestMask_ConcurrentCallsDoNotInterfere(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 64)

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fmt.Sprintf("value {v%d} and %%p%d%%", i, i)
			masked, ph := Mask(in)
			if got := ph.Restore(masked); got != in {
				errs <- fmt.Sprintf("restore(%q) = %q", in, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
