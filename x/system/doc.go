/*
Package system implements the account provisioning program.

Every address starts owned by this program. It is the only way to fund a
fresh address, give it a data region and hand it to another program.
*/
package system
