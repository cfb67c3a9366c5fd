package lotto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"
)

const checkingLinkPrefix = "https://dhlottery.co.kr/qr.do?method=winQr&v="

// seoul is fixed at UTC+9; the draw schedule does not depend on the host's zone database
var seoul = time.FixedZone("KST", 9*60*60)

// firstDraw is the instant round 1 was drawn
var firstDraw = time.Date(2002, time.December, 7, 20, 45, 0, 0, seoul)

const week = 7 * 24 * time.Hour

// CurrentRound returns the latest round drawn at the given instant.
// A new round is counted from its Saturday 20:45 KST draw.
func CurrentRound(now time.Time) int {
	if now.Before(firstDraw) {
		return 0
	}
	return int(now.Sub(firstDraw)/week) + 1
}

// DrawTime returns the instant the given round is drawn
func DrawTime(round int) time.Time {
	return firstDraw.Add(time.Duration(round-1) * week)
}

// CheckingLink builds the result QR link for a batch of combinations bought for round
func CheckingLink(round int, numbers []entities.Combination) (string, error) {
	if round <= 0 {
		return "", fmt.Errorf("invalid round %d", round)
	}
	if len(numbers) == 0 || len(numbers) > entities.MaxPurchaseAmount {
		return "", fmt.Errorf("a link needs 1 to %d combinations, got %d", entities.MaxPurchaseAmount, len(numbers))
	}

	var b strings.Builder
	b.WriteString(checkingLinkPrefix)
	fmt.Fprintf(&b, "%04d", round)
	for _, combination := range numbers {
		if err := combination.Validate(); err != nil {
			return "", errors.Join(fmt.Errorf("invalid combination %v", []int(combination)), err)
		}
		b.WriteString("q")
		for _, n := range combination.Sorted() {
			fmt.Fprintf(&b, "%02d", n)
		}
	}
	return b.String(), nil
}
