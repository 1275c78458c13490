/*
The crowdd daemon serves the Stripe payment integration for the
crowdfunding platform.

Usage:
  crowdd

  Flags understood by crowdd:
    -c, --config  Path to the config file name.
                  Alternatively the environment var $CROWDDCFG can be used
                  to set the configuration file name.

  Example:
    crowdd -c /etc/crowdd/crowdd.config.json

The configured database DSNs must enable parseTime so date columns scan
into time values, e.g.

  user:password@tcp(localhost:3306)/crowd?parseTime=true
*/
package main
