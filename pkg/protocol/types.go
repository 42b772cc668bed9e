package protocol

import "encoding/json"

// Kind is the discriminator carried in the "type" field of every streamed
// packet object. The set is closed on the producer side; consumers must treat
// anything outside it as inert (KindUnknown) rather than failing.
type Kind string

const (
	// Control packets.
	KindSectionEnd        Kind = "section_end"
	KindStop              Kind = "stop"
	KindTopLevelBranching Kind = "top_level_branching"
	KindError             Kind = "error"

	// Final agent response packets.
	KindMessageStart Kind = "message_start"
	KindMessageDelta Kind = "message_delta"
	KindCitationInfo Kind = "citation_info"

	// Tool packets.
	KindSearchToolStart          Kind = "search_tool_start"
	KindSearchToolQueriesDelta   Kind = "search_tool_queries_delta"
	KindSearchToolDocumentsDelta Kind = "search_tool_documents_delta"
	KindOpenURLStart             Kind = "open_url_start"
	KindOpenURLURLs              Kind = "open_url_urls"
	KindOpenURLDocuments         Kind = "open_url_documents"
	KindImageGenerationStart     Kind = "image_generation_start"
	KindImageGenerationHeartbeat Kind = "image_generation_heartbeat"
	KindImageGenerationFinal     Kind = "image_generation_final"
	KindPythonToolStart          Kind = "python_tool_start"
	KindPythonToolDelta          Kind = "python_tool_delta"
	KindCustomToolStart          Kind = "custom_tool_start"
	KindCustomToolDelta          Kind = "custom_tool_delta"

	// Reasoning packets.
	KindReasoningStart Kind = "reasoning_start"
	KindReasoningDelta Kind = "reasoning_delta"
	KindReasoningDone  Kind = "reasoning_done"

	// Deep research packets.
	KindDeepResearchPlanStart       Kind = "deep_research_plan_start"
	KindDeepResearchPlanDelta       Kind = "deep_research_plan_delta"
	KindResearchAgentStart          Kind = "research_agent_start"
	KindIntermediateReportStart     Kind = "intermediate_report_start"
	KindIntermediateReportDelta     Kind = "intermediate_report_delta"
	KindIntermediateReportCitedDocs Kind = "intermediate_report_cited_docs"

	// KindUnknown is the catch-all for kinds this build does not know about.
	KindUnknown Kind = ""
)

// Placement locates a packet on the timeline. TurnIndex orders sequential
// units of agent work; TabIndex distinguishes concurrently-running lanes
// within one turn; SubTurnIndex, when present, nests the packet inside a
// delegated sub-agent run instead of the top-level timeline.
//
// TurnIndex is a pointer because producers occasionally omit placement; a
// nil turn index is not an error, the timeline parks such packets in a
// synthetic trailing turn.
type Placement struct {
	TurnIndex    *int `json:"turn_index,omitempty"`
	TabIndex     int  `json:"tab_index,omitempty"`
	SubTurnIndex *int `json:"sub_turn_index,omitempty"`
}

// Turn returns the turn index and whether a usable one was present.
func (p Placement) Turn() (int, bool) {
	if p.TurnIndex == nil || *p.TurnIndex < 0 {
		return 0, false
	}
	return *p.TurnIndex, true
}

// SubTurn returns the sub-turn index and whether one was present.
func (p Placement) SubTurn() (int, bool) {
	if p.SubTurnIndex == nil || *p.SubTurnIndex < 0 {
		return 0, false
	}
	return *p.SubTurnIndex, true
}

// Obj is one streamed packet body. Concrete types carry the kind-specific
// payload; the Kind method returns the wire discriminator.
type Obj interface {
	Kind() Kind
}

// Packet is one atomic unit of the stream: a placement plus a typed body.
type Packet struct {
	Placement Placement
	Obj       Obj
}

// SearchDoc is the document shape shared by search, URL-fetch and report
// packets. Only the fields the timeline surfaces are decoded.
type SearchDoc struct {
	DocumentID         string `json:"document_id"`
	SemanticIdentifier string `json:"semantic_identifier,omitempty"`
	Link               string `json:"link,omitempty"`
	Blurb              string `json:"blurb,omitempty"`
	SourceType         string `json:"source_type,omitempty"`
}

// GeneratedImage is one image produced by the image generation tool.
type GeneratedImage struct {
	FileID        string `json:"file_id"`
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Shape         string `json:"shape,omitempty"`
}

type SectionEnd struct{}

func (SectionEnd) Kind() Kind { return KindSectionEnd }

// OverallStop terminates the whole stream. StopReason is optional and, when
// set, distinguishes user cancellation from graceful completion.
type OverallStop struct {
	StopReason string `json:"stop_reason,omitempty"`
}

func (OverallStop) Kind() Kind { return KindStop }

// StopReasonCancelled is the stop_reason producers send for a user stop.
const StopReasonCancelled = "user_cancelled"

// TopLevelBranching is advance notice that the current turn is about to fan
// out into parallel lanes, sent so consumers can lay out tabs before the
// second lane produces its first packet.
type TopLevelBranching struct {
	NumParallelBranches int `json:"num_parallel_branches"`
}

func (TopLevelBranching) Kind() Kind { return KindTopLevelBranching }

// StreamError is a terminal failure surfaced by the producer or synthesized
// by the transport; it ends the step it is placed on.
type StreamError struct {
	Message string `json:"message,omitempty"`
}

func (StreamError) Kind() Kind { return KindError }

type MessageStart struct {
	FinalDocuments []SearchDoc `json:"final_documents,omitempty"`
}

func (MessageStart) Kind() Kind { return KindMessageStart }

type MessageDelta struct {
	Content string `json:"content"`
}

func (MessageDelta) Kind() Kind { return KindMessageDelta }

type CitationInfo struct {
	CitationNumber int    `json:"citation_number"`
	DocumentID     string `json:"document_id"`
}

func (CitationInfo) Kind() Kind { return KindCitationInfo }

type SearchToolStart struct {
	IsInternetSearch bool `json:"is_internet_search,omitempty"`
}

func (SearchToolStart) Kind() Kind { return KindSearchToolStart }

type SearchToolQueriesDelta struct {
	Queries []string `json:"queries"`
}

func (SearchToolQueriesDelta) Kind() Kind { return KindSearchToolQueriesDelta }

type SearchToolDocumentsDelta struct {
	Documents []SearchDoc `json:"documents"`
}

func (SearchToolDocumentsDelta) Kind() Kind { return KindSearchToolDocumentsDelta }

type OpenURLStart struct{}

func (OpenURLStart) Kind() Kind { return KindOpenURLStart }

type OpenURLURLs struct {
	URLs []string `json:"urls"`
}

func (OpenURLURLs) Kind() Kind { return KindOpenURLURLs }

type OpenURLDocuments struct {
	Documents []SearchDoc `json:"documents"`
}

func (OpenURLDocuments) Kind() Kind { return KindOpenURLDocuments }

type ImageGenerationStart struct{}

func (ImageGenerationStart) Kind() Kind { return KindImageGenerationStart }

type ImageGenerationHeartbeat struct{}

func (ImageGenerationHeartbeat) Kind() Kind { return KindImageGenerationHeartbeat }

type ImageGenerationFinal struct {
	Images []GeneratedImage `json:"images"`
}

func (ImageGenerationFinal) Kind() Kind { return KindImageGenerationFinal }

type PythonToolStart struct {
	Code string `json:"code"`
}

func (PythonToolStart) Kind() Kind { return KindPythonToolStart }

type PythonToolDelta struct {
	Stdout  string   `json:"stdout,omitempty"`
	Stderr  string   `json:"stderr,omitempty"`
	FileIDs []string `json:"file_ids,omitempty"`
}

func (PythonToolDelta) Kind() Kind { return KindPythonToolDelta }

type CustomToolStart struct {
	ToolName string `json:"tool_name"`
}

func (CustomToolStart) Kind() Kind { return KindCustomToolStart }

type CustomToolDelta struct {
	ToolName     string          `json:"tool_name"`
	ResponseType string          `json:"response_type"`
	Data         json.RawMessage `json:"data,omitempty"`
	FileIDs      []string        `json:"file_ids,omitempty"`
}

func (CustomToolDelta) Kind() Kind { return KindCustomToolDelta }

type ReasoningStart struct{}

func (ReasoningStart) Kind() Kind { return KindReasoningStart }

type ReasoningDelta struct {
	Reasoning string `json:"reasoning"`
}

func (ReasoningDelta) Kind() Kind { return KindReasoningDelta }

// ReasoningDone is reasoning's own terminal signal; some producers end a
// reasoning block with this instead of a section_end.
type ReasoningDone struct{}

func (ReasoningDone) Kind() Kind { return KindReasoningDone }

type DeepResearchPlanStart struct{}

func (DeepResearchPlanStart) Kind() Kind { return KindDeepResearchPlanStart }

type DeepResearchPlanDelta struct {
	Content string `json:"content"`
}

func (DeepResearchPlanDelta) Kind() Kind { return KindDeepResearchPlanDelta }

type ResearchAgentStart struct {
	ResearchTask string `json:"research_task"`
}

func (ResearchAgentStart) Kind() Kind { return KindResearchAgentStart }

type IntermediateReportStart struct{}

func (IntermediateReportStart) Kind() Kind { return KindIntermediateReportStart }

type IntermediateReportDelta struct {
	Content string `json:"content"`
}

func (IntermediateReportDelta) Kind() Kind { return KindIntermediateReportDelta }

type IntermediateReportCitedDocs struct {
	CitedDocs []SearchDoc `json:"cited_docs,omitempty"`
}

func (IntermediateReportCitedDocs) Kind() Kind { return KindIntermediateReportCitedDocs }

// Unknown preserves a packet body whose type this build does not recognize.
// It classifies as nothing and renders as nothing.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Unknown) Kind() Kind { return KindUnknown }
