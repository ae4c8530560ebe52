package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "hello", Text("  <b>hello</b> "))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
	assert.Equal(t, "Tom & Jerry", Text("Tom & Jerry"))
	assert.Equal(t, "", Text("   "))
	assert.Equal(t, "1 < 2", Text("1 < 2"))
}

func TestText_EncodedMarkupStaysInert(t *testing.T) {
	assert.Equal(t, "hi", Text("&lt;script&gt;alert(1)&lt;/script&gt; hi"))
	assert.Equal(t, "bold", Text("&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;"))

	out := Text("&amp;amp;amp;amp;lt;i&amp;amp;amp;amp;gt;x")
	assert.NotContains(t, out, "<i>")
}

func TestRedactPII(t *testing.T) {
	out := RedactPII("mail me at a.b@example.com or +62 812 3456 7890 after 5 pm")
	assert.NotContains(t, out, "example.com")
	assert.NotContains(t, out, "3456")
	assert.Contains(t, out, "after 5 pm")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "short", Summary("short", 10))
	assert.Equal(t, "the quick…", Summary("the quick brown fox", 12))
}

func TestSummary_KeepsRunesWhole(t *testing.T) {
	out := Summary(strings.Repeat("ص", 100), 161)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("ص", 80)+"…", out)
}
