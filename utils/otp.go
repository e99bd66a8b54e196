package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6-digit one-time code in the range 100000-999999.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means the process is in bad shape anyway.
		panic(err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000)
}
