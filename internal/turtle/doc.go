// Package turtle replays interpreter commands on a simulated turtle and
// renders the resulting drawing as SVG.
package turtle
