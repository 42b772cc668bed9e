package classify

import "github.com/go-go-golems/agentline/pkg/protocol"

// ToolLabel is the human-readable name of the tool a kind belongs to, used
// in collapsed-state summaries. Empty for non-tool kinds.
func ToolLabel(k protocol.Kind) string {
	switch k {
	case protocol.KindSearchToolStart, protocol.KindSearchToolQueriesDelta, protocol.KindSearchToolDocumentsDelta:
		return "Search"
	case protocol.KindOpenURLStart, protocol.KindOpenURLURLs, protocol.KindOpenURLDocuments:
		return "Read URL"
	case protocol.KindImageGenerationStart, protocol.KindImageGenerationHeartbeat, protocol.KindImageGenerationFinal:
		return "Generate image"
	case protocol.KindPythonToolStart, protocol.KindPythonToolDelta:
		return "Run code"
	case protocol.KindCustomToolStart, protocol.KindCustomToolDelta:
		return "Custom tool"
	case protocol.KindDeepResearchPlanStart, protocol.KindDeepResearchPlanDelta:
		return "Plan research"
	case protocol.KindResearchAgentStart:
		return "Research agent"
	case protocol.KindIntermediateReportStart, protocol.KindIntermediateReportDelta, protocol.KindIntermediateReportCitedDocs:
		return "Write report"
	default:
		return ""
	}
}

// RunningLabel is the in-progress status line shown while a step of this
// kind is still streaming.
func RunningLabel(k protocol.Kind) string {
	switch k {
	case protocol.KindSearchToolStart, protocol.KindSearchToolQueriesDelta, protocol.KindSearchToolDocumentsDelta:
		return "Searching"
	case protocol.KindOpenURLStart, protocol.KindOpenURLURLs, protocol.KindOpenURLDocuments:
		return "Reading sources"
	case protocol.KindImageGenerationStart, protocol.KindImageGenerationHeartbeat, protocol.KindImageGenerationFinal:
		return "Generating image"
	case protocol.KindPythonToolStart, protocol.KindPythonToolDelta:
		return "Running code"
	case protocol.KindCustomToolStart, protocol.KindCustomToolDelta:
		return "Running tool"
	case protocol.KindReasoningStart, protocol.KindReasoningDelta, protocol.KindReasoningDone:
		return "Thinking"
	case protocol.KindDeepResearchPlanStart, protocol.KindDeepResearchPlanDelta:
		return "Planning research"
	case protocol.KindResearchAgentStart:
		return "Researching"
	case protocol.KindIntermediateReportStart, protocol.KindIntermediateReportDelta, protocol.KindIntermediateReportCitedDocs:
		return "Writing report"
	case protocol.KindMessageStart, protocol.KindMessageDelta:
		return "Writing answer"
	default:
		return ""
	}
}

// Icon is a compact glyph for the step list; the render layer may map these
// to richer assets.
func Icon(k protocol.Kind) string {
	switch {
	case IsSearchSpecific(k):
		return "🔍"
	case k == protocol.KindOpenURLStart, k == protocol.KindOpenURLURLs, k == protocol.KindOpenURLDocuments:
		return "🌐"
	case k == protocol.KindImageGenerationStart, k == protocol.KindImageGenerationHeartbeat, k == protocol.KindImageGenerationFinal:
		return "🖼"
	case k == protocol.KindPythonToolStart, k == protocol.KindPythonToolDelta:
		return "⚙"
	case k == protocol.KindReasoningStart, k == protocol.KindReasoningDelta, k == protocol.KindReasoningDone:
		return "💭"
	case k == protocol.KindDeepResearchPlanStart, k == protocol.KindDeepResearchPlanDelta:
		return "🗺"
	case k == protocol.KindResearchAgentStart:
		return "🤖"
	case k == protocol.KindIntermediateReportStart, k == protocol.KindIntermediateReportDelta, k == protocol.KindIntermediateReportCitedDocs:
		return "📄"
	case k == protocol.KindMessageStart, k == protocol.KindMessageDelta:
		return "✎"
	case k == protocol.KindError:
		return "✗"
	default:
		return "•"
	}
}
