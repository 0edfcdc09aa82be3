package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/billmate/app/repositories"
	"gorm.io/gorm"
)

// Sale numbers look like SAL-20260829-0001: date-scoped, 4-digit
// zero-padded sequence restarting each calendar day.
const saleNumberPrefix = "SAL"

// saleDayPrefix returns the "SAL-YYYYMMDD" part for the given moment.
func saleDayPrefix(at time.Time) string {
	return saleNumberPrefix + "-" + at.Format("20060102")
}

// NextSaleNumber derives the next sequential number for the day by scanning
// existing sales inside the caller's transaction. Two concurrent checkouts
// can still compute the same candidate before either commits; the unique
// index on sales.sale_number turns that race into a retryable conflict, and
// the checkout coordinator regenerates on retry.
func NextSaleNumber(tx *gorm.DB, at time.Time) (string, error) {
	prefix := saleDayPrefix(at)

	highest, err := repositories.NewSaleRepository().WithTx(tx).MaxSaleNumberForDay(prefix)
	if err != nil {
		return "", fmt.Errorf("sale number: scan day %s: %w", prefix, err)
	}

	seq := 1
	if highest != "" {
		n, err := parseSaleSequence(highest)
		if err != nil {
			return "", err
		}
		seq = n + 1
	}

	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

// parseSaleSequence extracts the numeric suffix from a full sale number.
func parseSaleSequence(saleNumber string) (int, error) {
	idx := strings.LastIndexByte(saleNumber, '-')
	if idx < 0 || idx == len(saleNumber)-1 {
		return 0, fmt.Errorf("sale number: malformed %q", saleNumber)
	}
	n, err := strconv.Atoi(saleNumber[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("sale number: malformed %q: %w", saleNumber, err)
	}
	return n, nil
}
