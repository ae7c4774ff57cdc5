package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "headings",
			in:   "# Titre\n## Section\n### Sous-section",
			want: `<h1 style="color:#1f2937;">Titre</h1>` + "\n" +
				`<h2 style="color:#1f2937;margin-top:25px;border-bottom:1px solid #e5e7eb;padding-bottom:5px;">Section</h2>` + "\n" +
				`<h3 style="color:#1f2937;margin-top:20px;">Sous-section</h3>`,
		},
		{
			name: "bold and italic",
			in:   "Un **point clé** et une *nuance*.",
			want: `<p style="margin:10px 0;">Un <strong>point clé</strong> et une <em>nuance</em>.</p>`,
		},
		{
			name: "list grouped",
			in:   "- premier\n- second",
			want: `<ul style="margin:10px 0;padding-left:20px;"><li style="margin:5px 0;">premier</li><li style="margin:5px 0;">second</li></ul>`,
		},
		{
			name: "checkbox items",
			in:   "☐ Envoyer le devis\n- [ ] Relancer Paul",
			want: `<ul style="margin:10px 0;padding-left:20px;"><li style="margin:5px 0;">☐ Envoyer le devis</li><li style="margin:5px 0;">☐ Relancer Paul</li></ul>`,
		},
		{
			name: "paragraph line breaks",
			in:   "ligne un\nligne deux\n\nautre paragraphe",
			want: `<p style="margin:10px 0;">ligne un<br>ligne deux</p>` + "\n" + `<p style="margin:10px 0;">autre paragraphe</p>`,
		},
		{
			name: "html escaped",
			in:   "<script>alert(1)</script> & co",
			want: `<p style="margin:10px 0;">&lt;script&gt;alert(1)&lt;/script&gt; &amp; co</p>`,
		},
		{
			name: "crlf",
			in:   "a\r\nb",
			want: `<p style="margin:10px 0;">a<br>b</p>`,
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderMarkdown(tt.in))
		})
	}
}

func TestRenderMarkdownSeparateLists(t *testing.T) {
	out := RenderMarkdown("## Décisions\n- A\n- B\n\n## Actions\n☐ C")
	assert.Equal(t, 2, strings.Count(out, "<ul "))
	assert.Equal(t, 3, strings.Count(out, "<li "))
	assert.Less(t, strings.Index(out, "Décisions"), strings.Index(out, "<li style=\"margin:5px 0;\">A"))
}

func TestRenderMarkdownListEndsParagraph(t *testing.T) {
	out := RenderMarkdown("intro\n- item\nsuite")
	assert.Equal(t, `<p style="margin:10px 0;">intro</p>`+"\n"+
		`<ul style="margin:10px 0;padding-left:20px;"><li style="margin:5px 0;">item</li></ul>`+"\n"+
		`<p style="margin:10px 0;">suite</p>`, out)
}
