package pkg

import (
	"crypto/rand"
	"math/big"
)

const ResetCodeLength = 6

var ten = big.NewInt(10)

// RandDigits n 位随机数字验证码
func RandDigits(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		x, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + x.Int64())
	}
	return string(buf), nil
}
