// Package classify holds the pure predicates that map packet kinds to the
// semantic categories the timeline is built from. Everything here is a
// stateless function of the kind; unknown kinds fall into no category.
package classify

import "github.com/go-go-golems/agentline/pkg/protocol"

// toolActivity covers every kind emitted while the agent is doing work the
// timeline shows as a step, reasoning included.
var toolActivity = map[protocol.Kind]struct{}{
	protocol.KindSearchToolStart:             {},
	protocol.KindSearchToolQueriesDelta:      {},
	protocol.KindSearchToolDocumentsDelta:    {},
	protocol.KindOpenURLStart:                {},
	protocol.KindOpenURLURLs:                 {},
	protocol.KindOpenURLDocuments:            {},
	protocol.KindImageGenerationStart:        {},
	protocol.KindImageGenerationHeartbeat:    {},
	protocol.KindImageGenerationFinal:        {},
	protocol.KindPythonToolStart:             {},
	protocol.KindPythonToolDelta:             {},
	protocol.KindCustomToolStart:             {},
	protocol.KindCustomToolDelta:             {},
	protocol.KindReasoningStart:              {},
	protocol.KindReasoningDelta:              {},
	protocol.KindReasoningDone:               {},
	protocol.KindDeepResearchPlanStart:       {},
	protocol.KindDeepResearchPlanDelta:       {},
	protocol.KindResearchAgentStart:          {},
	protocol.KindIntermediateReportStart:     {},
	protocol.KindIntermediateReportDelta:     {},
	protocol.KindIntermediateReportCitedDocs: {},
}

// reasoning kinds are tool-shaped on the wire but are never counted as tool
// invocations in summaries.
var reasoning = map[protocol.Kind]struct{}{
	protocol.KindReasoningStart: {},
	protocol.KindReasoningDelta: {},
	protocol.KindReasoningDone:  {},
}

// IsToolActivity reports whether the kind belongs to the tool-activity
// family. With includeTerminal set, the step-terminal kinds (section_end,
// error) count too; callers grouping events into steps want that form, while
// callers counting real tool work want it off.
func IsToolActivity(k protocol.Kind, includeTerminal bool) bool {
	if _, ok := toolActivity[k]; ok {
		return true
	}
	if includeTerminal {
		return k == protocol.KindSectionEnd || k == protocol.KindError
	}
	return false
}

// IsActualToolInvocation is the stricter subset used for "N tools used"
// style summaries: tool activity minus reasoning, never terminal kinds.
func IsActualToolInvocation(k protocol.Kind) bool {
	if _, ok := reasoning[k]; ok {
		return false
	}
	return IsToolActivity(k, false)
}

// IsDisplayWorthy reports whether the kind announces user-facing output: the
// final answer, a generated image, or executed code whose output the user
// will see. Consumers use it to swap thinking chrome for the answer region.
func IsDisplayWorthy(k protocol.Kind) bool {
	switch k {
	case protocol.KindMessageStart, protocol.KindImageGenerationStart, protocol.KindPythonToolStart:
		return true
	default:
		return false
	}
}

// IsSearchSpecific reports whether the kind is one of the three search tool
// packets, used to build search-result chip lists.
func IsSearchSpecific(k protocol.Kind) bool {
	switch k {
	case protocol.KindSearchToolStart, protocol.KindSearchToolQueriesDelta, protocol.KindSearchToolDocumentsDelta:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the kind ends a step (section_end, error) or
// the stream (stop).
func IsTerminal(k protocol.Kind) bool {
	switch k {
	case protocol.KindSectionEnd, protocol.KindError, protocol.KindStop:
		return true
	default:
		return false
	}
}

// IsStepStart reports whether the kind opens a fresh logical unit of work at
// its coordinates. A start kind arriving after a terminal signal at the same
// placement begins a new step rather than extending the finished one.
func IsStepStart(k protocol.Kind) bool {
	switch k {
	case protocol.KindSearchToolStart,
		protocol.KindOpenURLStart,
		protocol.KindImageGenerationStart,
		protocol.KindPythonToolStart,
		protocol.KindCustomToolStart,
		protocol.KindReasoningStart,
		protocol.KindDeepResearchPlanStart,
		protocol.KindResearchAgentStart,
		protocol.KindIntermediateReportStart,
		protocol.KindMessageStart:
		return true
	default:
		return false
	}
}

// StreamComplete reports whether the stream's terminal packet has arrived.
// A plain scan; packet lists stay in the tens to low hundreds.
func StreamComplete(packets []protocol.Packet) bool {
	for _, p := range packets {
		if p.Obj != nil && p.Obj.Kind() == protocol.KindStop {
			return true
		}
	}
	return false
}

// FinalAnswerComing reports whether any packet announces user-facing output.
func FinalAnswerComing(packets []protocol.Packet) bool {
	for _, p := range packets {
		if p.Obj != nil && IsDisplayWorthy(p.Obj.Kind()) {
			return true
		}
	}
	return false
}
