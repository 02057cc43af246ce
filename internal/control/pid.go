package control

// threeTerm sums the proportional, integral and derivative contributions.
// The derivative input comes from the caller so each kind picks its own
// proxy: climb rate for altitude, rate delta for the body axes.
func threeTerm(kp, ki, kd, err, integral, derivative float64) float64 {
	return kp*err + ki*integral + kd*derivative
}
