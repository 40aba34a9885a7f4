package plagiarism

import (
	"strings"

	"github.com/braindler/braindler-multimodal/internal/models"
)

const sharedParagraph = "The investigator established that on the night of the fourteenth of March the accused entered the warehouse through the unlocked service door at the rear of the building. " +
	"Two witnesses confirmed his presence near the loading bay shortly before midnight and described the vehicle he used in consistent detail. " +
	"Security footage recovered from the neighbouring property corroborates both statements."

var prosecutorParagraphs = []string{
	"Forensic accountants reviewed eighteen months of ledger entries and identified a series of transfers routed through three intermediary companies registered abroad. " +
		"Each transfer stayed just below the reporting limit, and the receiving accounts were closed within weeks of the final payment. " +
		"The bank compliance officer was interviewed twice and supplied the original account opening forms.",
	"The defence requested an independent medical examination of the complainant, arguing that the initial hospital report omitted relevant history. " +
		"The court granted the request and appointed a specialist from the regional clinic, whose findings were delivered in writing before the preliminary hearing. " +
		"Neither party objected to the choice of expert at that stage.",
}

var investigatorParagraphs = []string{
	"Municipal inspectors documented repeated violations of the zoning code at the construction site, including unpermitted excavation beyond the approved boundary. " +
		"Photographs taken during four separate visits show heavy machinery operating outside the fenced perimeter on weekends. " +
		"The developer disputed the measurements and commissioned a private survey in response.",
	"Customs officials seized a shipment of industrial solvents whose declared composition did not match laboratory analysis of samples drawn at the port. " +
		"Invoices attached to the consignment listed a different supplier than the bill of lading, and the freight forwarder could not explain the discrepancy. " +
		"The containers remain sealed pending further testing.",
}

var russianParagraphs = []string{
	"Следователь установил, что в ночь на четырнадцатое марта обвиняемый проник на склад через незапертую служебную дверь в задней части здания. " +
		"Двое свидетелей подтвердили его присутствие возле погрузочной площадки незадолго до полуночи.",
	"Судебные бухгалтеры изучили записи в книгах учёта за восемнадцать месяцев и выявили серию переводов через три посреднические компании, зарегистрированные за рубежом. " +
		"Каждый перевод был чуть ниже порога отчётности.",
}

func joinParagraphs(paragraphs ...string) string {
	return strings.Join(paragraphs, "\n\n")
}

// reworded differs from sharedParagraph in a few phrases and scores in the
// suspicious band against it.
var reworded = strings.NewReplacer(
	"fourteenth of March", "second of April",
	"Two witnesses", "Several neighbours",
	"Security footage", "Video evidence",
).Replace(sharedParagraph)

func blocks(texts ...string) []models.TextBlock {
	out := make([]models.TextBlock, len(texts))
	for i, text := range texts {
		out[i] = models.TextBlock{Index: i, Text: text}
	}
	return out
}
