package grammar

import "github.com/ghettovoice/abnf"

var digit = abnf.Range("DIGIT", []byte{'0'}, []byte{'9'})

// amount = [ "+" / "-" ] *DIGIT [ "." *DIGIT ]
var amount = abnf.Concat(
	"amount",
	abnf.Optional("sign", abnf.AltFirst(
		"sign",
		abnf.Literal("\"+\"", []byte{'+'}),
		abnf.Literal("\"-\"", []byte{'-'}),
	)),
	abnf.Repeat0Inf("whole", digit),
	abnf.Optional("[ \".\" *DIGIT ]", abnf.Concat(
		"fraction",
		abnf.Literal("\".\"", []byte{'.'}),
		abnf.Repeat0Inf("*DIGIT", digit),
	)),
)

func Amount(s []byte, ns *abnf.Nodes) error {
	return amount(s, 0, ns) //errtrace:skip
}
