package align

//Options contains various options for the Fit and LOVO functions
type Options struct {
	cycles   int
	cutoff   float64 //in units of the RMSD, only used by Fit
	fraction float64 //only used by LOVO
	minimumN int     //The smallest number of pairs we are willing to superimpose.
}

//DefaultOptions return reasonable options for small molecules.
func DefaultOptions() *Options {
	r := new(Options)
	r.cycles = 5
	r.cutoff = 2.0
	r.fraction = 0.9
	r.minimumN = 3 //the smallest set that defines a rotation.
	return r
}

//Returns the maximum number of cycles,
//and sets it to a new value, if given.
func (O *Options) Cycles(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.cycles = n[0]
	}
	return O.cycles
}

//Returns the rejection cutoff for Fit, in units of the RMSD,
//and sets it to a new value, if given.
func (O *Options) Cutoff(c ...float64) float64 {
	if len(c) > 0 && c[0] > 0 {
		O.cutoff = c[0]
	}
	return O.cutoff
}

//Returns the fraction of the pairs used by the LOVO superposition,
//and sets it to a new value, if given and in (0,1].
func (O *Options) Fraction(f ...float64) float64 {
	if len(f) > 0 && f[0] > 0 && f[0] <= 1 {
		O.fraction = f[0]
	}
	return O.fraction
}

//Returns the smallest acceptable number of pairs
//to be used by the alinment procedures,
//and sets it to a new value, if given.
func (O *Options) MinimumN(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.minimumN = n[0]
	}
	return O.minimumN
}
