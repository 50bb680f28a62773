package test

import (
	"fmt"
	"math/rand"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomToken returns n random lowercase alphanumerics.
func RandomToken(n int) string {
	if n <= 0 {
		n = 1
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(buf)
}

// RandomEmail returns a unique looking address on example.com.
func RandomEmail() string {
	return RandomToken(8) + "@example.com"
}

// RandomSKU returns a stock keeping unit in the SKU-XXXX-NNNN shape.
func RandomSKU() string {
	return fmt.Sprintf("SKU-%s-%04d", RandomToken(4), rand.Intn(10000))
}
