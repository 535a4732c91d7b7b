// Package kid builds Norwegian KID creditor references: the number a bank
// uses to match an incoming payment to an order. The reference embeds the
// order id and a weighted check digit.
package kid

import (
	"fmt"
	"strings"
)

const orderIDWidth = 8

// Compute derives the 20-digit KID for an order id: 7 zero digits, the
// order id left-padded to 8 digits, 4 zero digits, and a check digit.
//
// The check digit follows the bank's historical routine: walk the padded
// id from its rightmost digit leftward with alternating weights 1,2,1,2…,
// write each weighted product out in decimal, sum every digit of that
// concatenation (a product like 14 contributes 1+4, not 14), and take
// 10 minus the last digit of the sum (0 stays 0). The concatenate-then-
// digit-sum step is what the payment network expects; do not replace it
// with a plain weighted sum.
func Compute(orderID string) (string, error) {
	if orderID == "" {
		return "", fmt.Errorf("kid: empty order id")
	}
	for _, c := range orderID {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("kid: order id %q is not numeric", orderID)
		}
	}
	if len(orderID) > orderIDWidth {
		return "", fmt.Errorf("kid: order id %q exceeds %d digits", orderID, orderIDWidth)
	}

	padded := strings.Repeat("0", orderIDWidth-len(orderID)) + orderID

	var weighted strings.Builder
	weight := 1
	for i := len(padded) - 1; i >= 0; i-- {
		digit := int(padded[i] - '0')
		weighted.WriteString(fmt.Sprintf("%d", digit*weight))
		if weight == 1 {
			weight = 2
		} else {
			weight = 1
		}
	}

	sum := 0
	for _, c := range weighted.String() {
		sum += int(c - '0')
	}

	check := sum % 10
	if check != 0 {
		check = 10 - check
	}

	return "0000000" + padded + "0000" + fmt.Sprintf("%d", check), nil
}
