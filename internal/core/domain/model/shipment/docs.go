// Package shipment contains the Shipment aggregate created by packing an order, its items,
// the package type and the carrier allow-list policy.
//
// A shipment exists once per (order, sequence index). Its container id and document number
// are allocated before it is persisted and never change afterwards.
package shipment
