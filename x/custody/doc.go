/*
Package custody moves the content of a program owned account across an
ownership boundary and back without losing a byte.

A program may only write accounts it owns, and a new owner only accepts an
account it creates itself. To hand a subject account to another program the
current owner first copies the subject into a buffer account derived from
the subject address, empties the subject and lets the new owner, the
custodian, recreate it. Repossess runs the same steps in reverse.

Evacuate and Repossess are two independent transactions. Between them the
custodian holds the subject and nothing in this package bounds how long
that lasts: only the record kept in the buffer allows the original owner to
take the subject back.
*/
package custody
