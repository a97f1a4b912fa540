package kernel

import (
	"math"
)

// bott returns the edge sum of Bott's line integral for a body seen from
// (xp, zp). It still needs to be multiplied by the density and 2 G.
func bott(b *body, xp, zp float64) float64 {
	sum := 0.0
	n := len(b.xs)
	for i := 0; i < n; i++ {
		j := i + 1
		if j == n { j = 0 }

		xv, zv := b.xs[i]-xp, b.zs[i]-zp
		xw, zw := b.xs[j]-xp, b.zs[j]-zp
		dx, dz := xw-xv, zw-zv
		if dx == 0 && dz == 0 { continue }

		r1, r2 := math.Hypot(xv, zv), math.Hypot(xw, zw)
		// The integrand vanishes along rays through a vertex.
		if r1 == 0 || r2 == 0 { continue }

		theta := -math.Atan2(dz, dx)
		sin, cos := math.Sincos(theta)
		phi1, phi2 := math.Atan2(zv, xv), math.Atan2(zw, xw)

		sum += (xv*sin+zv*cos)*(sin*math.Log(r2/r1)+cos*(phi2-phi1)) +
			(zw*phi2 - zv*phi1)
	}
	return sum
}

// talwani returns the total field anomaly of a magnetized body seen from
// (xp, zp).
func talwani(b *body, xp, zp float64) float64 {
	p, q := 0.0, 0.0
	n := len(b.xs)
	for i := 0; i < n; i++ {
		j := i + 1
		if j == n { j = 0 }

		xv, zv := b.xs[i]-xp, b.zs[i]-zp
		xw, zw := b.xs[j]-xp, b.zs[j]-zp
		// Horizontal edges contribute nothing.
		if zv == zw { continue }

		r1, r2 := xv*xv+zv*zv, xw*xw+zw*zw
		dTheta := math.Atan2(zv, xv) - math.Atan2(zw, xw)
		dx, dz := xv-xw, zw-zv
		g := 0.5 * math.Log(r2/r1)

		d2 := dx*dx + dz*dz
		zz, xz := dz*dz/d2, dx*dz/d2
		p += zz*dTheta + xz*g
		q += xz*dTheta - zz*g
	}

	v := b.coeff * (b.cosDip*b.cosStrike*q - b.sinDip*p)
	h := b.coeff * (b.cosDip*b.cosStrike*p + b.sinDip*q)
	return h*b.cosDip*b.cosStrike + v*b.sinDip
}

// kimWessel returns the edge sum of the vertical gravity gradient of a body
// seen from (xp, zp). It still needs to be multiplied by the density and
// -G. Every vertex must lie strictly below zp.
func kimWessel(b *body, xp, zp float64) float64 {
	sum := 0.0
	n := len(b.xs)
	for i := 0; i < n; i++ {
		j := i + 1
		if j == n { j = 0 }

		xv, zv := b.xs[i]-xp, b.zs[i]-zp
		xw, zw := b.xs[j]-xp, b.zs[j]-zp
		dx, dz := xw-xv, zw-zv
		if dx == 0 && dz == 0 { continue }

		theta1, theta2 := 2*math.Atan2(zv, xv), 2*math.Atan2(zw, xw)
		r1, r2 := xv*xv+zv*zv, xw*xw+zw*zw

		sum += dz*(dx*math.Log(r1/r2)-dz*(theta2-theta1))/(dx*dx+dz*dz) +
			math.Sin(theta2)*math.Log(zw) - math.Sin(theta1)*math.Log(zv)
	}
	return sum
}
