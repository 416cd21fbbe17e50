package newscache

// Outcome is what the view shows for one load.
type Outcome int

const (
	OutcomeArticles Outcome = iota
	OutcomeEmpty
	OutcomeFormatError
	OutcomeFetchFailed
)

const (
	MessageEmpty       = "No news articles found."
	MessageFormatError = "Error: Data format from API is incorrect."
	MessageFetchFailed = "Failed to load news. Please try again later."
)

// Classify maps a GetNews result to the outcome the view renders.
func Classify(articles []Article, err error) Outcome {
	switch {
	case err != nil && IsInvalidPayload(err):
		return OutcomeFormatError
	case err != nil:
		return OutcomeFetchFailed
	case len(articles) == 0:
		return OutcomeEmpty
	default:
		return OutcomeArticles
	}
}

// Message is the user-facing text for every outcome except OutcomeArticles.
func (o Outcome) Message() string {
	switch o {
	case OutcomeEmpty:
		return MessageEmpty
	case OutcomeFormatError:
		return MessageFormatError
	case OutcomeFetchFailed:
		return MessageFetchFailed
	default:
		return ""
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeArticles:
		return "articles"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFormatError:
		return "format_error"
	case OutcomeFetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}
