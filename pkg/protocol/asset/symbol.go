package asset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

// Symbol space constants. User-defined assets live in NAI space where the
// asset number packs the NAI data digits, a control bit, a qi-variant bit
// and the decimal places. A handful of first-class legacy assets have fixed
// asset numbers outside of that encoding.
const (
	// NAIShift is the bit offset of the NAI data digits inside an asset number.
	NAIShift = 5
	// ControlMask marks an asset number as belonging to NAI space.
	ControlMask = 0x10
	// QiMask distinguishes a symbol from its paired qi-variant in NAI space.
	QiMask = 0x20
	// PrecisionMask extracts the decimal places from an NAI-space asset number.
	PrecisionMask = 0x0F
	// MaxDecimals is the maximum allowed asset precision.
	MaxDecimals = 12
	// MinNAI and MaxNAI bound the NAI data digits (8 decimal digits).
	MinNAI = 1
	MaxNAI = 99999999

	// NAIStringLength is the length of the "@@XXXXXXXXX" form.
	NAIStringLength = 11
)

// Reserved NAI data digits of the legacy first-class assets.
const (
	NAIYin    = 1
	NAIYang   = 2
	NAIQi     = 3
	NAIGold   = 4
	NAIFood   = 5
	NAIWood   = 6
	NAIFabric = 7
	NAIHerb   = 8
)

// Fixed precisions of the legacy assets.
const (
	PrecisionYang   = 3
	PrecisionYin    = 3
	PrecisionQi     = 6
	PrecisionGold   = 6
	PrecisionFood   = 6
	PrecisionWood   = 6
	PrecisionFabric = 6
	PrecisionHerb   = 6
)

// Legacy asset numbers. They deliberately avoid the NAI-space control bit so
// that Space() can tell them apart by value alone.
const (
	AssetNumYang   = uint32((MaxNAI+NAIYang)<<NAIShift) | PrecisionYang
	AssetNumYin    = uint32((MaxNAI+NAIYin)<<NAIShift) | PrecisionYin
	AssetNumQi     = uint32((MaxNAI+NAIQi)<<NAIShift) | PrecisionQi
	AssetNumGold   = uint32((MaxNAI+NAIGold)<<NAIShift) | PrecisionGold
	AssetNumFood   = uint32((MaxNAI+NAIFood)<<NAIShift) | PrecisionFood
	AssetNumWood   = uint32((MaxNAI+NAIWood)<<NAIShift) | PrecisionWood
	AssetNumFabric = uint32((MaxNAI+NAIFabric)<<NAIShift) | PrecisionFabric
	AssetNumHerb   = uint32((MaxNAI+NAIHerb)<<NAIShift) | PrecisionHerb
)

// Space is the encoding space a symbol belongs to.
type Space byte

// Possible symbol spaces.
const (
	LegacySpace Space = iota
	NAISpace
)

// Symbol identifies an asset. The zero Symbol is not valid.
type Symbol struct {
	AssetNum uint32
}

// First-class symbols.
var (
	YangSymbol   = Symbol{AssetNum: AssetNumYang}
	YinSymbol    = Symbol{AssetNum: AssetNumYin}
	QiSymbol     = Symbol{AssetNum: AssetNumQi}
	GoldSymbol   = Symbol{AssetNum: AssetNumGold}
	FoodSymbol   = Symbol{AssetNum: AssetNumFood}
	WoodSymbol   = Symbol{AssetNum: AssetNumWood}
	FabricSymbol = Symbol{AssetNum: AssetNumFabric}
	HerbSymbol   = Symbol{AssetNum: AssetNumHerb}
)

// Errors returned by symbol parsing and validation.
var (
	ErrNAIOutOfRange     = errors.New("NAI out of range")
	ErrBadCheckDigit     = errors.New("invalid check digit")
	ErrBadNAIString      = errors.New("invalid NAI string")
	ErrBadDecimals       = errors.New("invalid decimal places")
	ErrUnknownSymbol     = errors.New("unknown asset symbol")
	ErrInvalidSymbol     = errors.New("invalid asset symbol")
	ErrDecimalsMismatch  = errors.New("decimal places do not match reserved NAI")
	ErrBadNAIStringShort = errors.New("incorrect NAI string length")
)

// dammTable is the fixed 10x10 anti-symmetric quasigroup table of the Damm
// algorithm, stored pre-multiplied by ten so that lookups chain without an
// extra multiply.
var dammTable = [100]uint8{
	0, 30, 10, 70, 50, 90, 80, 60, 40, 20,
	70, 0, 90, 20, 10, 50, 40, 80, 60, 30,
	40, 20, 0, 60, 80, 70, 10, 30, 50, 90,
	10, 70, 50, 0, 90, 80, 30, 40, 20, 60,
	60, 10, 20, 30, 0, 40, 50, 90, 70, 80,
	30, 60, 70, 40, 20, 0, 90, 50, 80, 10,
	50, 80, 60, 90, 70, 20, 0, 10, 30, 40,
	80, 90, 40, 50, 30, 60, 20, 0, 10, 70,
	90, 40, 30, 80, 60, 10, 70, 20, 0, 50,
	20, 50, 80, 10, 40, 30, 60, 70, 90, 0,
}

// DammChecksum8Digit computes the Damm check digit of an up to 8 decimal
// digit value, walking the digits from the most significant one.
func DammChecksum8Digit(value uint32) uint8 {
	if value >= 100000000 {
		panic("value out of 8-digit range")
	}

	q0 := value / 10
	d0 := value % 10
	q1 := q0 / 10
	d1 := q0 % 10
	q2 := q1 / 10
	d2 := q1 % 10
	q3 := q2 / 10
	d3 := q2 % 10
	q4 := q3 / 10
	d4 := q3 % 10
	q5 := q4 / 10
	d5 := q4 % 10
	d6 := q5 % 10
	d7 := q5 / 10

	x := dammTable[d7]
	x = dammTable[uint32(x)+d6]
	x = dammTable[uint32(x)+d5]
	x = dammTable[uint32(x)+d4]
	x = dammTable[uint32(x)+d3]
	x = dammTable[uint32(x)+d2]
	x = dammTable[uint32(x)+d1]
	x = dammTable[uint32(x)+d0]
	return x / 10
}

// FromAssetNum wraps a raw asset number into a Symbol, validating it.
func FromAssetNum(num uint32) (Symbol, error) {
	s := Symbol{AssetNum: num}
	if err := s.Validate(); err != nil {
		return Symbol{}, err
	}
	return s, nil
}

// FromNAI maps a 9-digit NAI (8 data digits plus the Damm check digit) and
// decimal places to a Symbol. Reserved NAIs map to the legacy asset numbers
// (the decimal places must agree); everything else is encoded into NAI space.
func FromNAI(nai uint32, decimals uint8) (Symbol, error) {
	checkDigit := nai % 10
	dataDigits := nai / 10

	if dataDigits < MinNAI || dataDigits > MaxNAI {
		return Symbol{}, ErrNAIOutOfRange
	}
	if uint8(checkDigit) != DammChecksum8Digit(dataDigits) {
		return Symbol{}, ErrBadCheckDigit
	}

	var (
		legacyNum       uint32
		legacyPrecision uint8
	)
	switch dataDigits {
	case NAIYang:
		legacyNum, legacyPrecision = AssetNumYang, PrecisionYang
	case NAIYin:
		legacyNum, legacyPrecision = AssetNumYin, PrecisionYin
	case NAIQi:
		legacyNum, legacyPrecision = AssetNumQi, PrecisionQi
	case NAIGold:
		legacyNum, legacyPrecision = AssetNumGold, PrecisionGold
	case NAIFood:
		legacyNum, legacyPrecision = AssetNumFood, PrecisionFood
	case NAIWood:
		legacyNum, legacyPrecision = AssetNumWood, PrecisionWood
	case NAIFabric:
		legacyNum, legacyPrecision = AssetNumFabric, PrecisionFabric
	case NAIHerb:
		legacyNum, legacyPrecision = AssetNumHerb, PrecisionHerb
	default:
		if decimals > MaxDecimals {
			return Symbol{}, ErrBadDecimals
		}
		return Symbol{AssetNum: dataDigits<<NAIShift | ControlMask | uint32(decimals)}, nil
	}
	if decimals != legacyPrecision {
		return Symbol{}, ErrDecimalsMismatch
	}
	return Symbol{AssetNum: legacyNum}, nil
}

// FromNAIString parses the "@@XXXXXXXXX" form together with the expected
// decimal places.
func FromNAIString(s string, decimals uint8) (Symbol, error) {
	if len(s) != NAIStringLength {
		return Symbol{}, ErrBadNAIStringShort
	}
	if s[0] != '@' || s[1] != '@' {
		return Symbol{}, fmt.Errorf("%w: bad prefix", ErrBadNAIString)
	}
	nai, err := strconv.ParseUint(s[2:], 10, 32)
	if err != nil {
		return Symbol{}, fmt.Errorf("%w: %s", ErrBadNAIString, err)
	}
	return FromNAI(uint32(nai), decimals)
}

// Space returns the encoding space of the symbol.
func (s Symbol) Space() Space {
	switch s.AssetNum {
	case AssetNumYang, AssetNumYin, AssetNumQi, AssetNumGold,
		AssetNumFood, AssetNumWood, AssetNumFabric, AssetNumHerb:
		return LegacySpace
	default:
		return NAISpace
	}
}

// Decimals returns the number of decimal places of the symbol.
func (s Symbol) Decimals() uint8 {
	switch s.AssetNum {
	case AssetNumYang:
		return PrecisionYang
	case AssetNumYin:
		return PrecisionYin
	case AssetNumQi:
		return PrecisionQi
	case AssetNumGold:
		return PrecisionGold
	case AssetNumFood:
		return PrecisionFood
	case AssetNumWood:
		return PrecisionWood
	case AssetNumFabric:
		return PrecisionFabric
	case AssetNumHerb:
		return PrecisionHerb
	default:
		return uint8(s.AssetNum & PrecisionMask)
	}
}

// ToNAI returns the 9-digit integer whose first 8 digits are the NAI data
// digits and whose last digit is the Damm checksum of those digits.
func (s Symbol) ToNAI() uint32 {
	var dataDigits uint32
	switch s.AssetNum {
	case AssetNumYang:
		dataDigits = NAIYang
	case AssetNumYin:
		dataDigits = NAIYin
	case AssetNumQi:
		dataDigits = NAIQi
	case AssetNumGold:
		dataDigits = NAIGold
	case AssetNumFood:
		dataDigits = NAIFood
	case AssetNumWood:
		dataDigits = NAIWood
	case AssetNumFabric:
		dataDigits = NAIFabric
	case AssetNumHerb:
		dataDigits = NAIHerb
	default:
		dataDigits = s.AssetNum >> NAIShift
	}
	return dataDigits*10 + uint32(DammChecksum8Digit(dataDigits))
}

// ToNAIString returns the symbol in "@@XXXXXXXXX" form.
func (s Symbol) ToNAIString() string {
	return fmt.Sprintf("@@%09d", s.ToNAI())
}

// IsQi is true iff the symbol is the qi-variant of its paired symbol. For
// legacy symbols only QI itself is qi.
func (s Symbol) IsQi() bool {
	if s.Space() == LegacySpace {
		return s.AssetNum == AssetNumQi
	}
	return s.AssetNum&QiMask != 0
}

// PairedSymbol toggles the qi-bit in NAI space; for legacy symbols it swaps
// YANG and QI and is the identity for every other legacy symbol.
func (s Symbol) PairedSymbol() Symbol {
	if s.Space() == LegacySpace {
		switch s.AssetNum {
		case AssetNumYang:
			return QiSymbol
		case AssetNumQi:
			return YangSymbol
		default:
			return s
		}
	}
	return Symbol{AssetNum: s.AssetNum ^ QiMask}
}

// Validate checks that the symbol is well-formed. Legacy asset numbers are
// always valid; NAI-space asset numbers must have the data digits in range,
// the control bit set and the decimals within bounds.
func (s Symbol) Validate() error {
	if s.Space() == LegacySpace {
		return nil
	}
	dataDigits := s.AssetNum >> NAIShift
	controlBit := s.AssetNum & ControlMask
	decimals := s.AssetNum & PrecisionMask
	if dataDigits < MinNAI || dataDigits > MaxNAI ||
		controlBit != ControlMask || decimals > MaxDecimals {
		return fmt.Errorf("%w: cannot determine space for asset %d", ErrInvalidSymbol, s.AssetNum)
	}
	return nil
}

// EncodeBinary implements the io.Serializable interface.
func (s *Symbol) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(s.AssetNum)
}

// DecodeBinary implements the io.Serializable interface.
func (s *Symbol) DecodeBinary(r *io.BinReader) {
	s.AssetNum = r.ReadU32LE()
}
