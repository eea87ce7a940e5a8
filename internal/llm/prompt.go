package llm

import (
	"fmt"
	"strings"

	"github.com/Rrens/meeting-buddy/internal/domain"
)

// SystemPrompt frames every request sent to a chat model
const SystemPrompt = "You are Meeting Buddy, an assistant for a team collaboration hub. Answer in plain text, concisely, using short bullet points where helpful."

// BuildPrompt creates the prompt for a team question or a meeting summary
func BuildPrompt(req Request) string {
	if req.Kind == domain.EntryMeetingSummary && req.Meeting != nil {
		return buildSummaryPrompt(req)
	}

	hub := ""
	if req.HubName != "" {
		hub = fmt.Sprintf(" in the %q hub", req.HubName)
	}
	return fmt.Sprintf(`A team member%s asks:

%s

Rules:
1. Answer the question directly
2. Suggest concrete next steps when relevant
3. Do not invent names, dates or numbers

Answer:`, hub, strings.TrimSpace(req.Query))
}

func buildSummaryPrompt(req Request) string {
	m := req.Meeting

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the meeting %q (%d minutes).\n", m.Title, m.Duration)

	if len(m.Agenda) > 0 {
		b.WriteString("\nAgenda:\n")
		for _, item := range m.Agenda {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(m.Participants) > 0 {
		fmt.Fprintf(&b, "\nParticipants: %s\n", strings.Join(m.Participants, ", "))
	}
	if len(m.Attendance) > 0 {
		b.WriteString("\nAttendance log:\n")
		for _, l := range m.Attendance {
			fmt.Fprintf(&b, "- %s %s at %s\n", l.UserName, l.Action, l.Timestamp.Format("15:04"))
		}
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", q)
	}

	b.WriteString(`
Rules:
1. Write one short paragraph followed by key highlights
2. Cover every agenda item
3. Do not invent decisions that are not implied by the agenda

Summary:`)
	return b.String()
}

// ExtractText strips a surrounding markdown code fence and whitespace from a
// model reply
func ExtractText(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	body := strings.TrimPrefix(content, "```")
	// drop a language tag on the opening fence
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		return content
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}
