/*
Package lock serialises mutations of a sequence graph.

Every mutation of a sequence (its conditions and the items they reference) runs
inside Manager.WithLock. Locally a reference counted mutex per key is used; when a
DistributedLocker is configured the same key is also locked across replicas.
*/
package lock
