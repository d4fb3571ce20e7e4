package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/nytsentiment/internal/models"
)

const (
	VADER_POSITIVE = "positive"
	VADER_NEGATIVE = "negative"
	VADER_NEUTRAL  = "neutral"

	VADER_THRESHOLD = 0.20
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// VADERClassifier scores text with the VADER lexicon. Score is the compound
// polarity in [-1, 1].
type VADERClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVADERClassifier() *VADERClassifier {
	return &VADERClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VADERClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	if err := ctx.Err(); err != nil {
		return models.SentimentResult{}, err
	}

	score := v.analyzer.PolarityScores(PlainText(text)).Compound

	var label string
	if score >= VADER_THRESHOLD {
		label = VADER_POSITIVE
	} else if score <= -VADER_THRESHOLD {
		label = VADER_NEGATIVE
	} else {
		label = VADER_NEUTRAL
	}

	return models.SentimentResult{Label: models.Category(label), Score: score}, nil
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// PlainText renders markdown and strips HTML so comment markup such as
// <br/> does not reach the lexicon.
func PlainText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())

	text := string(output)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		doc.Find("br").ReplaceWithHtml(" ")
		text = doc.Text()
	}

	return strings.Join(strings.Fields(RemoveLinks(text)), " ")
}
