package chat

import "testing"

func TestPayloadRoundTrip(t *testing.T) {
	raw := EncodePayload(PurposeQuestion, "abc123", AnswerYes)
	p := ParsePayload(raw)

	if p.Purpose != PurposeQuestion || p.ID != "abc123" || p.Data != AnswerYes {
		t.Errorf("round trip = %+v", p)
	}
}

func TestParsePayloadLegacyValue(t *testing.T) {
	// Undelimited values route by the raw string in every field.
	p := ParsePayload("scm")
	if p.Purpose != "scm" || p.ID != "scm" || p.Data != "scm" {
		t.Errorf("legacy parse = %+v", p)
	}
}

func TestParsePayloadKeepsDelimiterInData(t *testing.T) {
	raw := EncodePayload(PurposeRate, "5", "a|b")
	p := ParsePayload(raw)
	if p.Data != "a|b" {
		t.Errorf("data = %q, want delimiter preserved in the last field", p.Data)
	}
}

func TestQuestionMenuCarriesReflectionID(t *testing.T) {
	m := QuestionMenu("ref42")

	if len(m.Rows) != 2 || len(m.Rows[0]) != 1 || len(m.Rows[1]) != 1 {
		t.Fatalf("question menu layout = %v, want two single-button rows", m.Rows)
	}

	yes := ParsePayload(m.Rows[0][0].Payload)
	if yes.Purpose != PurposeQuestion || yes.ID != "ref42" || yes.Data != AnswerYes {
		t.Errorf("yes payload = %+v", yes)
	}
	no := ParsePayload(m.Rows[1][0].Payload)
	if no.Purpose != PurposeQuestion || no.ID != "ref42" || no.Data != AnswerNo {
		t.Errorf("no payload = %+v", no)
	}
}

func TestRateMenuLayout(t *testing.T) {
	m := RateMenu()

	if len(m.Rows) != 2 {
		t.Fatalf("rate menu has %d rows, want 2", len(m.Rows))
	}
	value := 1
	for i, row := range m.Rows {
		if len(row) != 5 {
			t.Fatalf("row %d has %d buttons, want 5", i, len(row))
		}
		for _, b := range row {
			p := ParsePayload(b.Payload)
			want := b.Label
			if p.Purpose != PurposeRate || p.Data != want {
				t.Errorf("button %d payload = %+v, want purpose %q data %q", value, p, PurposeRate, want)
			}
			value++
		}
	}
	if value != 11 {
		t.Errorf("menu covered values up to %d, want 1..10", value-1)
	}
}

func TestUpdatePredicates(t *testing.T) {
	var nilUpdate *Update
	if nilUpdate.IsText() || nilUpdate.IsCallback() {
		t.Error("nil update must satisfy no predicate")
	}

	empty := &Update{Kind: UpdateText}
	if empty.IsText() {
		t.Error("empty text is not a text update")
	}

	cb := &Update{Kind: UpdateCallback, Payload: Payload{Purpose: PurposeRate}}
	if !cb.IsCallback() || cb.IsText() {
		t.Error("callback predicates wrong")
	}
}
