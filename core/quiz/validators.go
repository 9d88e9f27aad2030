package quiz

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	answerInOptionsTag  = "answerinoptions"
	answerInOptionsText = "correct answer must be one of the options"
)

// RegisterValidators registers this package's custom validations; must be
// called once on the app's validator instance.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newQuestionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, answerInOptionsTag, answerInOptionsText)
}

func newQuestionStructValidation(sl validator.StructLevel) {
	nq := sl.Current().Interface().(NewQuestion)
	if nq.CorrectAnswer == "" || len(nq.Options) == 0 {
		return // `required` catches these
	}
	for _, opt := range nq.Options {
		if opt == nq.CorrectAnswer {
			return
		}
	}
	sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", answerInOptionsTag, "")
}
