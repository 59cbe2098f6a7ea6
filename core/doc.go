// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package core exists to hold the concepts and pure logic of the contact cache.

It's most important to be aware of what should *not* go here. In particular:

  * if it makes any reference to sqlite, or any other concrete store, it
    should not be in here.
  * if it reads files, watches them or parses command lines, it should not
    be in here.
  * if it starts goroutines that outlive a call, it belongs in a worker.

...and more generally, when adding to core:

  * it's fine to import from any subpackage of core
  * but never import from any other package of this module

The subpackages are layered: contact holds the value types, identifiers and
label rules; namegroup classifies contacts into buckets and counts them;
listsync reconciles an ordered sequence against a fresh query; and cache
builds the stateful engine on top of them. The cache is driven by a single
goroutine, which worker/contactcache provides.
*/
package core
