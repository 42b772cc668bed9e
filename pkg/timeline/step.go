// Package timeline reconstructs a renderable timeline from the raw packet
// stream. Reconstruction is a total fold: every arrival recomputes the whole
// snapshot from the full packet list, so the result is a pure function of
// the input and feeding the same list twice yields the same snapshot.
package timeline

import (
	"fmt"

	"github.com/go-go-golems/agentline/pkg/classify"
	"github.com/go-go-golems/agentline/pkg/protocol"
)

// StepKind names the logical unit of work a step represents.
type StepKind string

const (
	StepSearch        StepKind = "search"
	StepOpenURL       StepKind = "open_url"
	StepImage         StepKind = "image_generation"
	StepPython        StepKind = "python"
	StepCustomTool    StepKind = "custom_tool"
	StepReasoning     StepKind = "reasoning"
	StepPlan          StepKind = "deep_research_plan"
	StepResearchAgent StepKind = "research_agent"
	StepReport        StepKind = "intermediate_report"
	StepMessage       StepKind = "message"
	StepError         StepKind = "error"
)

// Step is a run of packets forming one logical agent action. Steps are only
// ever appended to; completion and cancellation are monotonic.
type Step struct {
	// Key is the stable identity derived from placement, e.g. "t0.l1" or
	// "t0.l1.s2" for a nested sub-agent step.
	Key      string
	Kind     StepKind
	Turn     int
	Tab      int
	SubTurn  int
	Nested   bool
	Packets  []protocol.Packet
	Children []*Step

	Complete  bool
	Cancelled bool

	// Accumulated content, filled per kind as deltas arrive.
	Text         string // reasoning / plan / report / message text
	Queries      []string
	Documents    []protocol.SearchDoc
	URLs         []string
	Images       []protocol.GeneratedImage
	Code         string
	Stdout       string
	Stderr       string
	ToolName     string
	ResearchTask string
	ErrMessage   string
	InternetSrch bool
}

// PrimaryKind is the packet kind that labels this step for status text.
func (s *Step) PrimaryKind() protocol.Kind {
	for _, p := range s.Packets {
		if p.Obj == nil {
			continue
		}
		if k := p.Obj.Kind(); k != protocol.KindSectionEnd && k != protocol.KindError {
			return k
		}
	}
	if len(s.Packets) > 0 && s.Packets[0].Obj != nil {
		return s.Packets[0].Obj.Kind()
	}
	return protocol.KindUnknown
}

// ToolLabel is the human-readable tool name for summaries; custom tools use
// their declared name.
func (s *Step) ToolLabel() string {
	if s.ToolName != "" {
		return s.ToolName
	}
	return classify.ToolLabel(s.PrimaryKind())
}

// IsActualTool reports whether this step counts toward "N tools used".
// Reasoning and final-answer steps never do.
func (s *Step) IsActualTool() bool {
	for _, p := range s.Packets {
		if p.Obj != nil && classify.IsActualToolInvocation(p.Obj.Kind()) {
			return true
		}
	}
	return false
}

func stepKindFor(k protocol.Kind) StepKind {
	switch k {
	case protocol.KindSearchToolStart, protocol.KindSearchToolQueriesDelta, protocol.KindSearchToolDocumentsDelta:
		return StepSearch
	case protocol.KindOpenURLStart, protocol.KindOpenURLURLs, protocol.KindOpenURLDocuments:
		return StepOpenURL
	case protocol.KindImageGenerationStart, protocol.KindImageGenerationHeartbeat, protocol.KindImageGenerationFinal:
		return StepImage
	case protocol.KindPythonToolStart, protocol.KindPythonToolDelta:
		return StepPython
	case protocol.KindCustomToolStart, protocol.KindCustomToolDelta:
		return StepCustomTool
	case protocol.KindReasoningStart, protocol.KindReasoningDelta, protocol.KindReasoningDone:
		return StepReasoning
	case protocol.KindDeepResearchPlanStart, protocol.KindDeepResearchPlanDelta:
		return StepPlan
	case protocol.KindResearchAgentStart:
		return StepResearchAgent
	case protocol.KindIntermediateReportStart, protocol.KindIntermediateReportDelta, protocol.KindIntermediateReportCitedDocs:
		return StepReport
	case protocol.KindMessageStart, protocol.KindMessageDelta:
		return StepMessage
	case protocol.KindError:
		return StepError
	default:
		return ""
	}
}

func topKey(turn, tab int) string {
	return fmt.Sprintf("t%d.l%d", turn, tab)
}

func subKey(turn, tab, sub int) string {
	return fmt.Sprintf("t%d.l%d.s%d", turn, tab, sub)
}

// assembler folds packets into steps. open tracks the live step per key so
// interleaved lanes keep their own ordered sub-sequences.
type assembler struct {
	steps []*Step
	open  map[string]*Step
}

func newAssembler() *assembler {
	return &assembler{open: map[string]*Step{}}
}

// add routes one packet to its step, creating steps and sub-agent parents as
// needed. turn is the already-resolved turn index (synthetic for packets
// that arrived without one).
func (a *assembler) add(turn int, pkt protocol.Packet) *Step {
	kind := protocol.KindUnknown
	if pkt.Obj != nil {
		kind = pkt.Obj.Kind()
	}
	sk := stepKindFor(kind)
	if sk == "" && !classify.IsTerminal(kind) {
		// Inert kind: nothing to render, nothing to group.
		return nil
	}

	tab := pkt.Placement.TabIndex
	if sub, ok := pkt.Placement.SubTurn(); ok {
		parent := a.open[topKey(turn, tab)]
		if parent == nil {
			// Delegation packets can outrun their parent's start packet.
			parent = &Step{
				Key:  topKey(turn, tab),
				Kind: StepResearchAgent,
				Turn: turn,
				Tab:  tab,
			}
			a.open[parent.Key] = parent
			a.steps = append(a.steps, parent)
		}
		child := a.open[subKey(turn, tab, sub)]
		if child == nil && classify.IsTerminal(kind) && kind != protocol.KindError {
			return nil
		}
		if child == nil || a.startsNewStep(child, kind, sk) {
			child = &Step{
				Key:     subKey(turn, tab, sub),
				Kind:    sk,
				Turn:    turn,
				Tab:     tab,
				SubTurn: sub,
				Nested:  true,
			}
			if sk == "" {
				child.Kind = StepError
			}
			a.open[child.Key] = child
			parent.Children = append(parent.Children, child)
		}
		a.apply(child, pkt)
		return child
	}

	key := topKey(turn, tab)
	step := a.open[key]
	if step == nil || a.startsNewStep(step, kind, sk) {
		if step == nil && classify.IsTerminal(kind) && kind != protocol.KindError {
			// A stray section_end with no step to close is dropped.
			return nil
		}
		step = &Step{Key: key, Kind: sk, Turn: turn, Tab: tab}
		if sk == "" {
			step.Kind = StepError
		}
		a.open[key] = step
		a.steps = append(a.steps, step)
	}
	a.apply(step, pkt)
	return step
}

// startsNewStep decides whether a packet at an existing step's coordinates
// opens a fresh logical unit: a start kind after the step's terminal signal,
// or a start kind of a structurally different family.
func (a *assembler) startsNewStep(cur *Step, kind protocol.Kind, sk StepKind) bool {
	if !classify.IsStepStart(kind) {
		return false
	}
	if cur.Complete {
		return true
	}
	return sk != "" && sk != cur.Kind
}

func (a *assembler) apply(s *Step, pkt protocol.Packet) {
	s.Packets = append(s.Packets, pkt)

	switch obj := pkt.Obj.(type) {
	case protocol.SectionEnd:
		s.Complete = true
	case protocol.StreamError:
		s.ErrMessage = obj.Message
		s.Complete = true
	case protocol.ReasoningDone:
		// Reasoning's own terminal; only reasoning steps end on it.
		if s.Kind == StepReasoning {
			s.Complete = true
		}
	case protocol.SearchToolStart:
		s.InternetSrch = obj.IsInternetSearch
	case protocol.SearchToolQueriesDelta:
		s.Queries = append(s.Queries, obj.Queries...)
	case protocol.SearchToolDocumentsDelta:
		s.Documents = appendNewDocs(s.Documents, obj.Documents)
	case protocol.OpenURLURLs:
		s.URLs = append(s.URLs, obj.URLs...)
	case protocol.OpenURLDocuments:
		s.Documents = appendNewDocs(s.Documents, obj.Documents)
	case protocol.ImageGenerationFinal:
		s.Images = append(s.Images, obj.Images...)
	case protocol.PythonToolStart:
		s.Code = obj.Code
	case protocol.PythonToolDelta:
		s.Stdout += obj.Stdout
		s.Stderr += obj.Stderr
	case protocol.CustomToolStart:
		s.ToolName = obj.ToolName
	case protocol.CustomToolDelta:
		if s.ToolName == "" {
			s.ToolName = obj.ToolName
		}
	case protocol.ReasoningDelta:
		s.Text += obj.Reasoning
	case protocol.DeepResearchPlanDelta:
		s.Text += obj.Content
	case protocol.ResearchAgentStart:
		s.ResearchTask = obj.ResearchTask
	case protocol.IntermediateReportDelta:
		s.Text += obj.Content
	case protocol.IntermediateReportCitedDocs:
		s.Documents = appendNewDocs(s.Documents, obj.CitedDocs)
	case protocol.MessageStart:
		s.Documents = appendNewDocs(s.Documents, obj.FinalDocuments)
	case protocol.MessageDelta:
		s.Text += obj.Content
	}
}

// appendNewDocs deduplicates by document id while preserving arrival order;
// producers re-send document lists as they grow.
func appendNewDocs(dst []protocol.SearchDoc, docs []protocol.SearchDoc) []protocol.SearchDoc {
	seen := make(map[string]struct{}, len(dst))
	for _, d := range dst {
		seen[d.DocumentID] = struct{}{}
	}
	for _, d := range docs {
		if _, ok := seen[d.DocumentID]; ok {
			continue
		}
		seen[d.DocumentID] = struct{}{}
		dst = append(dst, d)
	}
	return dst
}
