package chain

const (
	LamportsPerSol uint64 = 1_000_000_000

	// AccountStorageOverhead is charged on top of an account's data length.
	AccountStorageOverhead = 128
)

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2.0,
}

// MinimumBalance is the deposit that makes an account of dataLen bytes rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}
