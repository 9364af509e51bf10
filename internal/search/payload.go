package search

import "callsearch/internal/model"

// Section labels attached to agenda results.
const (
	SectionAgenda    = "agenda"
	SectionDecisions = "decisions"
	SectionTargets   = "targets"
	SectionSummary   = "summary"
)

// flatten turns the structured payloads of a call into the agenda and action
// sequences the engine scores. Payload order and in-file order are kept.
func flatten(payloads []model.Payload) ([]model.AgendaItem, []model.ActionItem) {
	var (
		agenda  []model.AgendaItem
		actions []model.ActionItem
	)

	for _, p := range payloads {
		switch p := p.(type) {
		case model.AgendaPayload:
			for _, item := range p.Items {
				item.Section = SectionAgenda
				agenda = append(agenda, item)
			}
			agenda = append(agenda, decisions(p.Decisions)...)
			actions = append(actions, p.ActionItems...)

		case model.TldrPayload:
			for _, sec := range p.Highlights {
				for _, item := range sec.Items {
					item.Section = sec.Name
					agenda = append(agenda, item)
				}
			}
			agenda = append(agenda, decisions(p.Decisions)...)
			for _, t := range p.Targets {
				agenda = append(agenda, model.AgendaItem{
					Timestamp: t.Timestamp,
					Highlight: t.Target,
					Section:   SectionTargets,
				})
			}
			actions = append(actions, p.ActionItems...)

		case model.SummaryPayload:
			for _, item := range p.Sections {
				item.Section = SectionSummary
				agenda = append(agenda, item)
			}
		}
	}
	return agenda, actions
}

func decisions(ds []model.Decision) []model.AgendaItem {
	out := make([]model.AgendaItem, 0, len(ds))
	for _, d := range ds {
		out = append(out, model.AgendaItem{
			Timestamp: d.Timestamp,
			Highlight: d.Decision,
			Section:   SectionDecisions,
			Decision:  true,
		})
	}
	return out
}
