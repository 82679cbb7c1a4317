package common

import "fmt"

//EncodeToString returns the UPPERCASE hexadecimal representation of b with
//the 0X prefix. It is the display form of wallet public keys.
func EncodeToString(b []byte) string {
	return fmt.Sprintf("0X%X", b)
}
