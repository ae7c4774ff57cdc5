package notify

import (
	"html"
	"strings"
)

// FailureSubjectPrefix marks diagnostic emails.
const FailureSubjectPrefix = "[ERREUR] "

const reportLayout = `<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px;">
<div style="background: linear-gradient(135deg, #1f2937 0%, #374151 100%); color: white; padding: 20px; border-radius: 10px 10px 0 0;">
<h1 style="margin:0; font-size: 1.3rem;">☁️ Tribe Azure - Meeting Transcriber 📝</h1>
</div>
<div style="padding: 20px; background: #f9fafb; border: 1px solid #e5e7eb; border-top: none;">
{{body}}
</div>
<div style="padding: 15px; background: #f3f4f6; border-radius: 0 0 10px 10px; text-align: center; font-size: 0.8rem; color: #6b7280;">
Généré automatiquement par Meeting Transcriber - Devoteam M Cloud
</div>
</div>`

const failureLayout = `<div style="font-family: Arial, sans-serif; padding: 20px;">
<h2 style="color: #dc2626;">❌ Erreur lors du traitement</h2>
<p>Une erreur s'est produite lors du traitement de votre fichier audio.</p>
<p><strong>Erreur:</strong> {{error}}</p>
<p>Veuillez réessayer ou contacter le support.</p>
</div>`

// ReportHTML renders the markdown report inside the branded layout.
func ReportHTML(markdown string) string {
	return strings.Replace(reportLayout, "{{body}}", RenderMarkdown(markdown), 1)
}

// FailureHTML renders the diagnostic body for errMsg.
func FailureHTML(errMsg string) string {
	return strings.Replace(failureLayout, "{{error}}", html.EscapeString(errMsg), 1)
}

// FailureSubject is the subject of the diagnostic email for a submission.
func FailureSubject(subject string) string {
	return FailureSubjectPrefix + subject
}
