package ui

import (
	"fmt"
	"math/rand"

	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/salarystats/internal/utils"
)

const bannerText = `
▄▄███▄▄· █████╗ ██╗      █████╗ ██████╗ ██╗   ██╗   ▄▄███▄▄·████████╗ █████╗ ████████╗▄▄███▄▄·
██╔════╝██╔══██╗██║     ██╔══██╗██╔══██╗╚██╗ ██╔╝   ██╔════╝╚══██╔══╝██╔══██╗╚══██╔══╝██╔════╝
███████╗███████║██║     ███████║██████╔╝ ╚████╔╝    ███████╗   ██║   ███████║   ██║   ███████╗
╚════██║██╔══██║██║     ██╔══██║██╔══██╗  ╚██╔╝     ╚════██║   ██║   ██╔══██║   ██║   ╚════██║
███████║██║  ██║███████╗██║  ██║██║  ██║   ██║      ███████║   ██║   ██║  ██║   ██║   ███████║
╚═▀▀▀══╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝      ╚═▀▀▀══╝   ╚═╝   ╚═╝  ╚═╝   ╚═╝   ╚═▀▀▀══╝
 vacancies & salaries per language · hh.ru · superjob.ru
`

// Salary bands in rubles per month used by ColorizeSalary
const (
	highSalary   = 300000
	goodSalary   = 200000
	medianSalary = 100000
)

// ColorizeText applies a random color fade to the input text
func ColorizeText(text string) string {
	startColor := pterm.NewRGB(uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256)))
	firstPoint := pterm.NewRGB(uint8(rand.Intn(256)), uint8(rand.Intn(256)), uint8(rand.Intn(256)))

	runes := []rune(text)
	half := len(runes) / 2
	if half == 0 {
		return text
	}

	var coloredText string
	for i, r := range runes {
		coloredText += startColor.Fade(0, float32(len(runes)), float32(i%half), firstPoint).Sprint(string(r))
	}

	return coloredText
}

// PrintBanner displays the application banner
func PrintBanner(silence bool) {
	if !silence {
		fmt.Println(ColorizeText(bannerText))
	}
}

// ColorizeSalary formats a monthly salary and colors it by band
func ColorizeSalary(salary int) string {
	formatted := utils.FormatSalary(salary)

	switch {
	case salary >= highSalary:
		return pterm.Green(formatted)
	case salary >= goodSalary:
		return pterm.LightGreen(formatted)
	case salary >= medianSalary:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}
