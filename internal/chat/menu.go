package chat

import "strconv"

const (
	questionYesLabel   = "Yes ✅"
	questionLaterLabel = "Later... ❌"
)

// QuestionMenu builds the accept/decline menu for a pending poll. The
// reflection id rides along in the payload so the response can be matched to
// the right queue entry later.
func QuestionMenu(reflectionID string) Menu {
	return Menu{Rows: [][]Button{
		{{Label: questionYesLabel, Payload: EncodePayload(PurposeQuestion, reflectionID, AnswerYes)}},
		{{Label: questionLaterLabel, Payload: EncodePayload(PurposeQuestion, reflectionID, AnswerNo)}},
	}}
}

// RateMenu builds the 1-10 rating selector, two rows of five.
func RateMenu() Menu {
	rows := make([][]Button, 0, 2)
	value := 1
	for i := 0; i < 2; i++ {
		row := make([]Button, 0, 5)
		for j := 0; j < 5; j++ {
			label := strconv.Itoa(value)
			row = append(row, Button{
				Label:   label,
				Payload: EncodePayload(PurposeRate, label, label),
			})
			value++
		}
		rows = append(rows, row)
	}
	return Menu{Rows: rows}
}
