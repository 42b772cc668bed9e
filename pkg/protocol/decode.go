package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type wirePacket struct {
	Placement Placement       `json:"placement"`
	Obj       json.RawMessage `json:"obj"`
}

type wireHead struct {
	Type string `json:"type"`
}

// UnmarshalJSON decodes a packet, dispatching on the body's "type" field.
// Unrecognized types decode into Unknown; only malformed JSON is an error.
func (p *Packet) UnmarshalJSON(b []byte) error {
	var w wirePacket
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "unmarshal packet")
	}
	obj, err := DecodeObj(w.Obj)
	if err != nil {
		return err
	}
	p.Placement = w.Placement
	p.Obj = obj
	return nil
}

// MarshalJSON re-injects the "type" discriminator into the body so a decoded
// packet round-trips to the same wire shape.
func (p Packet) MarshalJSON() ([]byte, error) {
	body, err := encodeObj(p.Obj)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wirePacket{Placement: p.Placement, Obj: body})
}

// DecodeObj decodes one packet body from its wire JSON.
func DecodeObj(raw json.RawMessage) (Obj, error) {
	if len(raw) == 0 {
		return Unknown{}, nil
	}
	var head wireHead
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(err, "unmarshal packet obj head")
	}

	decode := func(dst Obj) (Obj, error) {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, errors.Wrapf(err, "unmarshal %s packet", head.Type)
		}
		return deref(dst), nil
	}

	switch Kind(head.Type) {
	case KindSectionEnd:
		return SectionEnd{}, nil
	case KindStop:
		return decode(&OverallStop{})
	case KindTopLevelBranching:
		return decode(&TopLevelBranching{})
	case KindError:
		return decode(&StreamError{})
	case KindMessageStart:
		return decode(&MessageStart{})
	case KindMessageDelta:
		return decode(&MessageDelta{})
	case KindCitationInfo:
		return decode(&CitationInfo{})
	case KindSearchToolStart:
		return decode(&SearchToolStart{})
	case KindSearchToolQueriesDelta:
		return decode(&SearchToolQueriesDelta{})
	case KindSearchToolDocumentsDelta:
		return decode(&SearchToolDocumentsDelta{})
	case KindOpenURLStart:
		return OpenURLStart{}, nil
	case KindOpenURLURLs:
		return decode(&OpenURLURLs{})
	case KindOpenURLDocuments:
		return decode(&OpenURLDocuments{})
	case KindImageGenerationStart:
		return ImageGenerationStart{}, nil
	case KindImageGenerationHeartbeat:
		return ImageGenerationHeartbeat{}, nil
	case KindImageGenerationFinal:
		return decode(&ImageGenerationFinal{})
	case KindPythonToolStart:
		return decode(&PythonToolStart{})
	case KindPythonToolDelta:
		return decode(&PythonToolDelta{})
	case KindCustomToolStart:
		return decode(&CustomToolStart{})
	case KindCustomToolDelta:
		return decode(&CustomToolDelta{})
	case KindReasoningStart:
		return ReasoningStart{}, nil
	case KindReasoningDelta:
		return decode(&ReasoningDelta{})
	case KindReasoningDone:
		return ReasoningDone{}, nil
	case KindDeepResearchPlanStart:
		return DeepResearchPlanStart{}, nil
	case KindDeepResearchPlanDelta:
		return decode(&DeepResearchPlanDelta{})
	case KindResearchAgentStart:
		return decode(&ResearchAgentStart{})
	case KindIntermediateReportStart:
		return IntermediateReportStart{}, nil
	case KindIntermediateReportDelta:
		return decode(&IntermediateReportDelta{})
	case KindIntermediateReportCitedDocs:
		return decode(&IntermediateReportCitedDocs{})
	default:
		return Unknown{Type: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

func encodeObj(o Obj) (json.RawMessage, error) {
	if o == nil {
		o = Unknown{}
	}
	if u, ok := o.(Unknown); ok && len(u.Raw) > 0 {
		return u.Raw, nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "marshal packet obj")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "reshape packet obj")
	}
	m["type"] = string(o.Kind())
	out, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal packet obj with type")
	}
	return out, nil
}

// deref unwraps the pointer handed to decode so packets always carry value
// bodies; comparisons and snapshot recomputation stay value-based.
func deref(o Obj) Obj {
	switch v := o.(type) {
	case *OverallStop:
		return *v
	case *TopLevelBranching:
		return *v
	case *StreamError:
		return *v
	case *MessageStart:
		return *v
	case *MessageDelta:
		return *v
	case *CitationInfo:
		return *v
	case *SearchToolStart:
		return *v
	case *SearchToolQueriesDelta:
		return *v
	case *SearchToolDocumentsDelta:
		return *v
	case *OpenURLURLs:
		return *v
	case *OpenURLDocuments:
		return *v
	case *ImageGenerationFinal:
		return *v
	case *PythonToolStart:
		return *v
	case *PythonToolDelta:
		return *v
	case *CustomToolStart:
		return *v
	case *CustomToolDelta:
		return *v
	case *ReasoningDelta:
		return *v
	case *DeepResearchPlanDelta:
		return *v
	case *ResearchAgentStart:
		return *v
	case *IntermediateReportDelta:
		return *v
	case *IntermediateReportCitedDocs:
		return *v
	default:
		return o
	}
}
