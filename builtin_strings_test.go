package paren

import (
	"math"
	"testing"
)

func Test_Strings_Length_Counts_Code_Points(t *testing.T) {
	wantInt32(t, evalSrc(t, `(strlen "hello")`), 5)
	wantInt32(t, evalSrc(t, `(strlen "héllo")`), 5)
	wantInt32(t, evalSrc(t, `(strlen "")`), 0)

	ip, _, errOut := newTestIP(t)
	wantSoftError(t, mustEval(t, ip, "(strlen 5)"), errOut, "must be a string")
}

func Test_Strings_Strcat_Uses_Display_Text(t *testing.T) {
	wantStr(t, evalSrc(t, `(strcat "a" 1 2.5 "b")`), "a12.5b")
	wantStr(t, evalSrc(t, `(strcat "n=" 7L)`), "n=7")
	wantStr(t, evalSrc(t, `(strcat "x" null "y")`), "xy")
	wantStr(t, evalSrc(t, `(strcat (list 1 "two"))`), "(1 two)")
	wantStr(t, evalSrc(t, "(strcat)"), "")
}

func Test_Strings_Char_At_And_Chr(t *testing.T) {
	wantInt32(t, evalSrc(t, `(char-at "abc" 1)`), 'b')
	wantInt32(t, evalSrc(t, `(char-at "héllo" 1)`), 'é')
	wantStr(t, evalSrc(t, "(chr 65)"), "A")
	wantStr(t, evalSrc(t, "(chr 233)"), "é")
	wantStr(t, evalSrc(t, `(chr (char-at "z" 0))`), "z")

	ip, _, errOut := newTestIP(t)
	wantSoftError(t, mustEval(t, ip, `(char-at "abc" 3)`), errOut, "out of range")
	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, "(chr -1)"), errOut, "not a valid code point")
	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, "(chr 55296)"), errOut, "not a valid code point")
}

func Test_Strings_String_Conversion(t *testing.T) {
	wantStr(t, evalSrc(t, "(string 1L)"), "1")
	wantStr(t, evalSrc(t, "(string 1.0)"), "1.0")
	wantStr(t, evalSrc(t, `(string "s")`), "s")
	wantStr(t, evalSrc(t, "(string true)"), "true")
	wantStr(t, evalSrc(t, "(string (quote sym))"), "sym")
}

func Test_Strings_Numeric_Coercions(t *testing.T) {
	wantInt32(t, evalSrc(t, `(int "42")`), 42)
	wantInt32(t, evalSrc(t, `(int " -5 ")`), -5)
	wantInt32(t, evalSrc(t, "(int 3.9)"), 3)
	wantInt32(t, evalSrc(t, "(int -3.9)"), -3)
	wantInt32(t, evalSrc(t, "(int 1e20)"), math.MaxInt32)
	wantInt32(t, evalSrc(t, `(int "2.7")`), 2)
	wantInt32(t, evalSrc(t, "(int 4294967297L)"), 1)

	wantInt64(t, evalSrc(t, "(long 5)"), 5)
	wantInt64(t, evalSrc(t, `(long "9000000000")`), 9000000000)
	wantInt64(t, evalSrc(t, `(long "12L")`), 12)

	wantFloat(t, evalSrc(t, `(double "2.5")`), 2.5)
	wantFloat(t, evalSrc(t, "(double 2)"), 2)
	wantFloat(t, evalSrc(t, `(double "1e3")`), 1000)

	ip, _, errOut := newTestIP(t)
	wantSoftError(t, mustEval(t, ip, `(int "abc")`), errOut, "is not a number")
	errOut.Reset()
	wantSoftError(t, mustEval(t, ip, "(double (list))"), errOut, "cannot convert list")
}
