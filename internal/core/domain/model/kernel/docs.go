// Package kernel holds the primitives shared by every aggregate: the UUID identifier
// and the GS1 Mod-10 check digit used by container ids and GTINs.
package kernel
