package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PromptForQuestion asks the user for a question about stocks
func PromptForQuestion() (string, error) {
	var question string
	prompt := &survey.Input{
		Message: "What would you like to know about the market?",
		Help:    "e.g. How is AAPL doing today? Compare MSFT and GOOGL. Any recent news on TSLA?",
	}

	err := survey.AskOne(prompt, &question, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("question cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(question), nil
}
