// Package services holds the pure domain services of the dispatch pipeline:
//
//   - PackingEngine splits order lines into capacity-bound shipment groups;
//   - ContainerIDScheme and ContainerIDAllocator produce SSCC container ids;
//   - DispatchDocumentBuilder renders the outbound dispatch advice and its filename;
//   - LabelBuilder describes the shipping label for the external renderer.
//
// Apart from the allocator, which increments a durable counter, none of them perform I/O.
package services
