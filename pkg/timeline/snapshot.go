package timeline

import (
	"github.com/go-go-golems/agentline/pkg/classify"
	"github.com/go-go-golems/agentline/pkg/protocol"
)

// Citation links a citation number the model emitted to a document id.
type Citation struct {
	Number     int
	DocumentID string
}

// Snapshot is the externally consumed result of a rebuild: ordered turn
// groups plus the global stream state. It is recomputed whole on every
// packet arrival, never patched.
type Snapshot struct {
	Turns []*TurnGroup

	// Answer is the accumulated final-answer text; AnswerDocuments are the
	// documents attached to the answer's start packet.
	Answer          string
	AnswerDocuments []protocol.SearchDoc
	Citations       []Citation

	StreamComplete bool
	UserCancelled  bool
	StopReason     string

	// HeaderText summarizes current activity, chosen by priority:
	// cancelled, complete, latest running step, generic fallback.
	HeaderText string

	// ToolCount counts steps that are actual tool invocations; reasoning
	// and answer steps are excluded.
	ToolCount int
}

// Steps returns all top-level steps in arrival order.
func (s *Snapshot) Steps() []*Step {
	var out []*Step
	for _, g := range s.Turns {
		out = append(out, g.Steps...)
	}
	return out
}

// LastStep returns the most recently started top-level step, or nil.
func (s *Snapshot) LastStep() *Step {
	steps := s.Steps()
	if len(steps) == 0 {
		return nil
	}
	return steps[len(steps)-1]
}

// Rebuild reconstructs the snapshot from the full packet list. Linear in
// the number of packets; packets are processed strictly in arrival order and
// never reordered.
func Rebuild(packets []protocol.Packet) *Snapshot {
	snap := &Snapshot{}

	// Packets without a usable turn index land in a synthetic turn after
	// the last real one so the rest of the timeline stays renderable.
	syntheticTurn := 0
	for _, p := range packets {
		if t, ok := p.Placement.Turn(); ok && t >= syntheticTurn {
			syntheticTurn = t + 1
		}
	}

	asm := newAssembler()
	branching := map[int]bool{}
	answerStarted := false

	for _, pkt := range packets {
		if pkt.Obj == nil {
			continue
		}
		turn, ok := pkt.Placement.Turn()
		if !ok {
			turn = syntheticTurn
		}

		switch obj := pkt.Obj.(type) {
		case protocol.OverallStop:
			snap.StreamComplete = true
			snap.StopReason = obj.StopReason
			cancelled := obj.StopReason == protocol.StopReasonCancelled ||
				(!answerStarted && anyIncomplete(asm.steps))
			finalize(asm.steps, cancelled)
			snap.UserCancelled = snap.UserCancelled || cancelled
		case protocol.TopLevelBranching:
			if obj.NumParallelBranches >= 2 {
				branching[turn] = true
			}
		case protocol.CitationInfo:
			snap.Citations = append(snap.Citations, Citation{
				Number:     obj.CitationNumber,
				DocumentID: obj.DocumentID,
			})
			// citation_info is stream metadata, not a step.
		case protocol.Unknown:
			// Inert by contract; never fails the rebuild.
		default:
			if pkt.Obj.Kind() == protocol.KindMessageStart {
				answerStarted = true
			}
			asm.add(turn, pkt)
		}
	}

	snap.Turns = groupTurns(asm.steps, branching, syntheticTurn)

	for _, s := range asm.steps {
		if s.Kind == StepMessage {
			snap.Answer += s.Text
			snap.AnswerDocuments = appendNewDocs(snap.AnswerDocuments, s.Documents)
		}
		if s.IsActualTool() {
			snap.ToolCount++
		}
		for _, c := range s.Children {
			if c.IsActualTool() {
				snap.ToolCount++
			}
		}
	}

	snap.HeaderText = headerText(snap, asm.steps)
	return snap
}

// anyIncomplete scans top-level steps and their children for outstanding
// work at the moment the stop packet arrived.
func anyIncomplete(steps []*Step) bool {
	for _, s := range steps {
		if !s.Complete {
			return true
		}
		for _, c := range s.Children {
			if !c.Complete {
				return true
			}
		}
	}
	return false
}

// finalize settles every step still open when the stream terminated: flagged
// cancelled on a user stop, or closed normally on a graceful one. Completion
// stays monotonic either way.
func finalize(steps []*Step, cancelled bool) {
	mark := func(s *Step) {
		if s.Complete {
			return
		}
		if cancelled {
			s.Cancelled = true
		}
		s.Complete = true
	}
	for _, s := range steps {
		for _, c := range s.Children {
			mark(c)
		}
		mark(s)
	}
}

func headerText(snap *Snapshot, steps []*Step) string {
	deepResearch := false
	for _, s := range steps {
		switch s.Kind {
		case StepPlan, StepResearchAgent, StepReport:
			deepResearch = true
		}
	}

	if snap.UserCancelled {
		return "Stopped"
	}
	if snap.StreamComplete {
		if deepResearch {
			return "Research complete"
		}
		return "Done"
	}
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Complete {
			continue
		}
		if label := classify.RunningLabel(steps[i].PrimaryKind()); label != "" {
			return label
		}
	}
	if deepResearch {
		return "Researching"
	}
	return "Thinking"
}
