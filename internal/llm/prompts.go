package llm

import (
	_ "embed"
	"strings"

	"transparency-backend/internal/shared/util"
)

// Input limits, in characters.
const (
	MaxAnalysisChars = 95000
	MaxChatChars     = 500000
)

const (
	protocolStart = "--- PROTOCOL START ---"
	protocolEnd   = "--- PROTOCOL END ---"
)

//go:embed prompts/protocol_v2.txt
var protocolPrompt string

// SystemPrompt returns the full rubric instruction sent with every analysis.
func SystemPrompt() string {
	return protocolPrompt
}

// ProtocolRules returns the rubric section between the protocol markers.
func ProtocolRules() string {
	_, rest, ok := strings.Cut(protocolPrompt, protocolStart)
	if !ok {
		return ""
	}
	rules, _, _ := strings.Cut(rest, protocolEnd)
	return strings.TrimSpace(rules)
}

// AnalysisPrompt builds the user message for a coding request.
func AnalysisPrompt(documentText string) string {
	return "Analyze this academic article for GenAI transparency disclosure based on Protocol v2.0 (Revised). " +
		"Provide detailed evidence and reasoning:\n\n" + util.TruncateRunes(documentText, MaxAnalysisChars)
}

// ChatSystemPrompt builds the instruction for document chat.
func ChatSystemPrompt(model, documentText string) string {
	var b strings.Builder
	b.WriteString(`You are an expert, persuasive, and highly intelligent academic coding assistant for the "GENAI TRANSPARENCY CODING PROTOCOL VERSION 2.0 (REVISED)".
You are chatting with a user who is analyzing an academic article using this protocol.

Your goal is to provide focused, clear, and persuasive answers.

You have access to the full text of the document and the full protocol, both provided below.

STRICTLY FOLLOW THE PROTOCOL RULES.

STYLE GUIDELINES:
1. Do not use excessive bolding (avoid **text** unless absolutely necessary for a single key term).
2. Write in a natural, professional, and persuasive flow. Avoid robotic lists if a paragraph explains it better.
3. Be authoritative and convincing. Use your knowledge of the protocol to justify your answers definitively.
`)
	b.WriteString("4. If the user asks about the model, confirm you are using the model selected in the application (")
	b.WriteString(model)
	b.WriteString(").\n\n")
	b.WriteString(protocolStart)
	b.WriteString("\n")
	b.WriteString(ProtocolRules())
	b.WriteString("\n")
	b.WriteString(protocolEnd)
	b.WriteString("\n\nDOCUMENT CONTEXT:\n")
	b.WriteString(util.TruncateRunes(documentText, MaxChatChars))
	b.WriteString("\n")
	return b.String()
}
